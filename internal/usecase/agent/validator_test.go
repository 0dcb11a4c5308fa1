package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

func TestValidator_OffTopicQuery(t *testing.T) {
	a := NewValidator()

	res, err := a.Execute(context.Background(), "Qual a temperatura hoje em Porto Alegre?", Context{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Confidence != 0.3 {
		t.Fatalf("confidence = %v, want 0.3", res.Confidence)
	}
	if !strings.Contains(res.Metadata["issues"], "fora do escopo") {
		t.Fatalf("issues = %q", res.Metadata["issues"])
	}
}

func TestValidator_GenericQueryPenalized(t *testing.T) {
	a := NewValidator()

	res, err := a.Execute(context.Background(), "Me explique tudo", Context{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got, want := res.Confidence, 0.8*0.8; got != want {
		t.Fatalf("confidence = %v, want %v", got, want)
	}
	if !strings.Contains(res.Metadata["issues"], "muito genérica") {
		t.Fatalf("issues = %q", res.Metadata["issues"])
	}
}

func TestValidator_ScopedQueryBaseline(t *testing.T) {
	a := NewValidator()

	res, err := a.Execute(context.Background(), "O que diz o plano diretor sobre altura?", Context{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", res.Confidence)
	}
	if res.Metadata["issues"] != "" {
		t.Fatalf("issues = %q, want none", res.Metadata["issues"])
	}
}

func TestValidator_EntitiesCountAsScope(t *testing.T) {
	a := NewValidator()

	res, err := a.Execute(context.Background(), "e quanto posso aproveitar?", Context{
		Classification: domain.Classification{
			Entities: domain.Entities{Neighborhood: "PETROPOLIS"},
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", res.Confidence)
	}
}
