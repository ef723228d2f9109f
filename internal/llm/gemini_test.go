package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"
)

func geminiServer(t *testing.T, text, finish string) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
				"finishReason": finish,
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount":     12,
				"candidatesTokenCount": 8,
				"totalTokenCount":      20,
			},
			"modelVersion": "gemini-2.5-flash-001",
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "test-key", Model: "gemini-flash", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	return p
}

func TestGeminiProvider_StructuredAnswer(t *testing.T) {
	p := geminiServer(t, `{"outcome":"synonym_accepted","error_description":"Vocabulary: Synonym"}`, "STOP")
	if p.ModelID() != "gemini-2.5-flash" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}

	resp, err := p.Generate(context.Background(), UserRequest("grade", "Gebäude for Haus", verdictSchema()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Model != "gemini-2.5-flash-001" || resp.Usage.TotalTokens != 20 || resp.StopReason != StopEnd {
		t.Fatalf("response = %+v", resp)
	}
}

func TestGeminiProvider_TruncatedStructuredAnswer(t *testing.T) {
	p := geminiServer(t, `{"outcome":`, "MAX_TOKENS")

	_, err := p.Generate(context.Background(), UserRequest("", "classify", verdictSchema()))
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestGeminiSchema(t *testing.T) {
	schema := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sentence": map[string]any{"type": "string", "description": "One sentence"},
			"outcome":  map[string]any{"type": "string", "enum": []any{"correct", "incorrect"}},
			"options": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"confidence": map[string]any{"type": "integer"},
		},
		"required":             []string{"sentence", "outcome"},
		"additionalProperties": false,
	})

	if schema.Type != genai.TypeObject || len(schema.Properties) != 4 {
		t.Fatalf("schema = %+v", schema)
	}
	if s := schema.Properties["sentence"]; s.Type != genai.TypeString || s.Description != "One sentence" {
		t.Errorf("sentence = %+v", s)
	}
	if e := schema.Properties["outcome"].Enum; len(e) != 2 || e[1] != "incorrect" {
		t.Errorf("outcome enum = %v", e)
	}
	if o := schema.Properties["options"]; o.Type != genai.TypeArray || o.Items.Type != genai.TypeString {
		t.Errorf("options = %+v", o)
	}
	if schema.Properties["confidence"].Type != genai.TypeInteger {
		t.Errorf("confidence type = %s", schema.Properties["confidence"].Type)
	}
	if len(schema.Required) != 2 || schema.Required[0] != "sentence" {
		t.Errorf("required = %v", schema.Required)
	}
}

func TestGeminiSchema_UnknownTypeFallsBackToString(t *testing.T) {
	if s := geminiSchema(map[string]any{"type": "null"}); s.Type != genai.TypeString {
		t.Fatalf("type = %s", s.Type)
	}
}
