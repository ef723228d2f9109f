package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

// verdictSchema mirrors the shape of an answer classification.
func verdictSchema() *Schema {
	return &Schema{
		Name:        "test-verdict",
		Description: "Classification of a learner's answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"outcome": map[string]any{
					"type": "string",
					"enum": []any{"correct", "incorrect", "morphological_error", "synonym_accepted"},
				},
				"error_description": map[string]any{"type": "string"},
				"confidence":        map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			},
			"required":             []any{"outcome", "error_description"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"complete", `{"outcome":"morphological_error","error_description":"Grammar: Plural","confidence":80}`, true},
		{"optional field missing", `{"outcome":"correct","error_description":""}`, true},
		{"required field missing", `{"outcome":"correct"}`, false},
		{"wrong type", `{"outcome":"correct","error_description":"","confidence":"high"}`, false},
		{"out of range", `{"outcome":"correct","error_description":"","confidence":101}`, false},
		{"unknown outcome", `{"outcome":"almost","error_description":""}`, false},
		{"extra field", `{"outcome":"correct","error_description":"","note":"x"}`, false},
		{"malformed", `{outcome:}`, false},
		{"empty", ``, false},
		{"whitespace", "  \n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(verdictSchema(), json.RawMessage(tt.raw))
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
			}
		})
	}
}

func TestValidateResponse_NilSchemaAcceptsAnything(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateResponse_ArrayItems(t *testing.T) {
	schema := &Schema{
		Name: "test-distractors",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 1,
				},
			},
			"required": []any{"options"},
		},
	}

	if err := validateResponse(schema, json.RawMessage(`{"options":["Hund","Baum"]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateResponse(schema, json.RawMessage(`{"options":[1,2]}`)); err == nil {
		t.Fatal("expected error for non-string options")
	}
	if err := validateResponse(schema, json.RawMessage(`{"options":[]}`)); err == nil {
		t.Fatal("expected error for empty options")
	}
}

func TestFinish(t *testing.T) {
	req := UserRequest("sys", "classify", verdictSchema())
	good := json.RawMessage(`{"outcome":"correct","error_description":""}`)
	cut := json.RawMessage(`{"outcome":"corr`)

	resp, err := finish(req, good, Usage{InputTokens: 10, OutputTokens: 4}, "m", StopEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 14 || resp.Model != "m" || resp.StopReason != StopEnd {
		t.Fatalf("response = %+v", resp)
	}

	_, err = finish(req, cut, Usage{}, "m", StopMaxTokens)
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}

	_, err = finish(req, cut, Usage{}, "m", StopEnd)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}

	// Unstructured requests pass raw text through.
	resp, err = finish(UserRequest("", "hi", nil), json.RawMessage("hello"), Usage{}, "m", StopMaxTokens)
	if err != nil || string(resp.Content) != "hello" {
		t.Fatalf("unstructured = %v, %v", resp, err)
	}
}
