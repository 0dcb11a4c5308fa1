package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestCompleter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "A altura máxima é 42 metros."},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{"prompt_tokens": 50, "completion_tokens": 12, "total_tokens": 62},
		})
	}))
	defer server.Close()

	completer := NewCompleter(&CompleterConfig{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   500,
		Logger:      zap.NewNop(),
	})

	out, err := completer.Complete(context.Background(), "synthesize",
		"Você é um assistente de planejamento urbano.", "Qual a altura máxima na ZOT 8?")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != "A altura máxima é 42 metros." {
		t.Errorf("unexpected completion: %q", out)
	}
}

func TestCompleter_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "cmpl-2", "object": "chat.completion", "choices": []any{},
		})
	}))
	defer server.Close()

	completer := NewCompleter(&CompleterConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Logger:  zap.NewNop(),
	})

	if _, err := completer.Complete(context.Background(), "classify", "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
