package llm

import (
	"context"
	"encoding/json"
)

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Provider is implemented by every vendor adapter and by the middleware
// that wraps them (timeout, retry, event logging).
type Provider interface {
	// Generate runs one completion. With req.Schema set, the returned
	// Content is JSON that has been checked against the schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, after alias expansion.
	ModelID() string
}

// Request is a vendor-neutral completion request.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured output through the vendor's native
	// mechanism. Without it Content carries the model's raw text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the vendor default in place.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names and describes one response shape. Name doubles as the
// OpenAI json_schema name and as the validation cache key, so it must be
// unique per shape ("practice-sentence", "answer-verdict").
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any // JSON Schema as Go literals
}

type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the call. Vendors report
	// dated snapshots here ("gpt-4o-mini-2024-07-18").
	Model string

	StopReason string // StopEnd or StopMaxTokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserRequest builds a single-turn request, the only shape the trainer sends.
func UserRequest(system, user string, schema *Schema) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
		Schema:   schema,
	}
}

// finish turns raw vendor output into a Response. A structured answer cut
// off at the token limit is reported as ErrMaxTokensExceeded, anything else
// that does not match the schema as ErrInvalidResponse.
func finish(req Request, raw json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if req.Schema != nil {
		if err := validateResponse(req.Schema, raw); err != nil {
			if stop == StopMaxTokens {
				return nil, &ErrMaxTokensExceeded{Content: raw}
			}
			return nil, err
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: raw, Usage: usage, Model: model, StopReason: stop}, nil
}
