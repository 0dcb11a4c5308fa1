package keyword

import (
	"context"
	"testing"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

type mockSets struct {
	data map[string][]string
}

func newMockSets() *mockSets {
	return &mockSets{data: make(map[string][]string)}
}

func (m *mockSets) SAdd(_ context.Context, key string, members ...string) error {
	m.data[key] = append(m.data[key], members...)
	return nil
}

func (m *mockSets) SMembers(_ context.Context, key string) ([]string, error) {
	return m.data[key], nil
}

func TestStore_IndexAndFind(t *testing.T) {
	sets := newMockSets()
	store := New(sets)
	ctx := context.Background()

	rec := domain.Record{ID: "r1", Source: "regime_urbanistico", Content: "TRES FIGUEIRAS ZOT 08"}
	keys := []string{"BAIRRO_TRES_FIGUEIRAS", "ZONA_08"}
	if err := store.Index(ctx, keys, rec); err != nil {
		t.Fatalf("index: %v", err)
	}

	found, err := store.FindByKeywords(ctx, []string{"BAIRRO_TRES_FIGUEIRAS"}, 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || found[0].ID != "r1" {
		t.Fatalf("found = %+v, want r1", found)
	}
}

func TestStore_FindDeduplicatesAcrossKeys(t *testing.T) {
	sets := newMockSets()
	store := New(sets)
	ctx := context.Background()

	rec := domain.Record{ID: "r1", Content: "conteudo"}
	if err := store.Index(ctx, []string{"BAIRRO_CRISTAL", "ZONA_05"}, rec); err != nil {
		t.Fatalf("index: %v", err)
	}

	found, err := store.FindByKeywords(ctx, []string{"BAIRRO_CRISTAL", "ZONA_05"}, 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("found %d records, want 1 after dedup", len(found))
	}
}

func TestStore_FindSkipsMalformedMembers(t *testing.T) {
	sets := newMockSets()
	sets.data[keyPrefix+"BAIRRO_AZENHA"] = []string{"not json", `{"ID":"ok"}`}
	store := New(sets)

	found, err := store.FindByKeywords(context.Background(), []string{"BAIRRO_AZENHA"}, 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || found[0].ID != "ok" {
		t.Fatalf("found = %+v, want single ok record", found)
	}
}

func TestStore_FindMissingKeyEmpty(t *testing.T) {
	store := New(newMockSets())

	found, err := store.FindByKeywords(context.Background(), []string{"BAIRRO_INEXISTENTE"}, 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("found %d records for missing key", len(found))
	}
}
