package normalize

import "testing"

func TestExtractArticleReferencesBareNumber(t *testing.T) {
	refs := ExtractArticleReferences("Art. 81, Inciso III")
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1: %v", len(refs), refs)
	}
	if refs[0].Number != "81" || refs[0].LawType != "" {
		t.Errorf("got %+v, want number 81 without law type", refs[0])
	}
}

func TestExtractArticleReferencesWithLaw(t *testing.T) {
	refs := ExtractArticleReferences("o que diz o artigo 74 da LUOS")
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1: %v", len(refs), refs)
	}
	if refs[0].Number != "74" || refs[0].LawType != "LUOS" {
		t.Errorf("got %+v, want {74 LUOS}", refs[0])
	}
}

func TestExtractArticleReferencesDedup(t *testing.T) {
	refs := ExtractArticleReferences("art. 5 do plano diretor e também o artigo 05")
	if len(refs) != 1 {
		t.Fatalf("got %d refs, want 1 after dedup: %v", len(refs), refs)
	}
	if refs[0].Number != "5" || refs[0].LawType != "PDUS" {
		t.Errorf("got %+v, want {5 PDUS}", refs[0])
	}
}

func TestExtractArticleReferencesRange(t *testing.T) {
	refs := ExtractArticleReferences("artigos 3 a 5 da luos")
	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3: %v", len(refs), refs)
	}
	for i, want := range []string{"3", "4", "5"} {
		if refs[i].Number != want {
			t.Errorf("ref[%d] = %q, want %q", i, refs[i].Number, want)
		}
	}
}

func TestExtractArticleReferencesNone(t *testing.T) {
	if refs := ExtractArticleReferences("altura máxima no centro"); len(refs) != 0 {
		t.Errorf("unexpected refs: %v", refs)
	}
}
