package agent

import (
	"context"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

type mockRetriever struct {
	result   domain.RetrievalResult
	err      error
	calls    int
	lastNorm domain.NormalizedQuery
	lastCls  domain.Classification
}

func (m *mockRetriever) Retrieve(_ context.Context, norm domain.NormalizedQuery, c domain.Classification) (domain.RetrievalResult, error) {
	m.calls++
	m.lastNorm = norm
	m.lastCls = c
	if m.err != nil {
		return domain.RetrievalResult{}, m.err
	}
	return m.result, nil
}

type mockCounter struct {
	neighborhoods int
	zones         int
	zoneRecords   []domain.Record
	err           error

	lastNeighborhood string
	lastLimit        int
}

func (m *mockCounter) CountNeighborhoods(context.Context) (int, error) {
	return m.neighborhoods, m.err
}

func (m *mockCounter) CountZones(context.Context) (int, error) {
	return m.zones, m.err
}

func (m *mockCounter) ZonesForNeighborhood(_ context.Context, name string, limit int) ([]domain.Record, error) {
	m.lastNeighborhood = name
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.zoneRecords, nil
}

func legalRecord(id, num, law string) domain.Record {
	return domain.Record{
		ID:      id,
		Source:  "legal_articles",
		Content: "conteúdo do artigo " + num,
		Metadata: map[string]string{
			"article_number": num,
			"document_type":  law,
		},
	}
}

func regimeRecord(id, bairro, zona string) domain.Record {
	return domain.Record{
		ID:      id,
		Source:  "regime_urbanistico",
		Content: "regime de " + bairro,
		Metadata: map[string]string{
			"bairro": bairro,
			"zona":   zona,
		},
	}
}
