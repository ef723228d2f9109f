package contentgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/abhisek/lasty/internal/llm"
	"github.com/abhisek/lasty/internal/progress"
)

// Config controls the behavior of the Generator.
type Config struct {
	// MaxTokens is the token budget for each response.
	MaxTokens int

	// Temperature is used for sentences and distractors.
	Temperature float64

	// ClassifyTemperature is used for answer verdicts and translations.
	ClassifyTemperature float64
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:           256,
		Temperature:         0.7,
		ClassifyTemperature: 0.1,
	}
}

// Generator implements Capability with an LLM provider.
type Generator struct {
	provider llm.Provider
	cfg      Config
}

var _ Capability = (*Generator)(nil)

// New creates a Generator.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, cfg: cfg}
}

// call sends one single-turn request and decodes the structured reply.
func (g *Generator) call(ctx context.Context, purpose, system, user string, schema *llm.Schema, temperature float64, out any) error {
	ctx = llm.WithPurpose(ctx, purpose)
	req := llm.UserRequest(system, user, schema)
	req.MaxTokens = g.cfg.MaxTokens
	req.Temperature = temperature
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("LLM %s failed: %w", purpose, err)
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", purpose, err)
	}
	return nil
}

// GenerateSentence asks for a practice sentence containing req.Word.
func (g *Generator) GenerateSentence(ctx context.Context, req SentenceRequest) (string, error) {
	userMsg, err := render(sentenceUserTemplate, req)
	if err != nil {
		return "", fmt.Errorf("build sentence prompt: %w", err)
	}

	var raw struct {
		Sentence string `json:"sentence"`
	}
	if err := g.call(ctx, llm.PurposeSentence, sentenceSystemPrompt, userMsg, SentenceSchema, g.cfg.Temperature, &raw); err != nil {
		return "", err
	}

	sentence := stripQuotes(raw.Sentence)
	if sentence == "" {
		return "", fmt.Errorf("empty sentence: %w", ErrUnavailable)
	}
	return sentence, nil
}

// GenerateTranslation translates sentence into language.
func (g *Generator) GenerateTranslation(ctx context.Context, sentence, language string) (string, error) {
	userMsg, err := render(translationUserTemplate, struct{ Sentence, Language string }{sentence, language})
	if err != nil {
		return "", fmt.Errorf("build translation prompt: %w", err)
	}

	var raw struct {
		Translation string `json:"translation"`
	}
	if err := g.call(ctx, llm.PurposeTranslation, translationSystemPrompt, userMsg, TranslationSchema, g.cfg.ClassifyTemperature, &raw); err != nil {
		return "", err
	}

	translation := stripQuotes(raw.Translation)
	if translation == "" {
		return "", fmt.Errorf("empty translation: %w", ErrUnavailable)
	}
	return translation, nil
}

// GenerateDistractors returns at most count distinct options, none of them
// equal to correct. Fewer than count may come back.
func (g *Generator) GenerateDistractors(ctx context.Context, correct, language string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	userMsg, err := render(distractorsUserTemplate, struct {
		Correct, Language string
		Count             int
	}{correct, language, count})
	if err != nil {
		return nil, fmt.Errorf("build distractors prompt: %w", err)
	}

	var raw struct {
		Options []string `json:"options"`
	}
	if err := g.call(ctx, llm.PurposeDistractors, distractorsSystemPrompt, userMsg, DistractorsSchema, g.cfg.Temperature, &raw); err != nil {
		return nil, err
	}

	seen := map[string]bool{Normalize(correct): true}
	var options []string
	for _, opt := range raw.Options {
		opt = stripQuotes(opt)
		key := Normalize(opt)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		options = append(options, opt)
		if len(options) == count {
			break
		}
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("no usable distractors: %w", ErrUnavailable)
	}
	return options, nil
}

// ClassifyAnswer grades actual against expected. Exact matches never reach
// the model. When the model fails the rule set decides, so the returned
// error is always nil.
func (g *Generator) ClassifyAnswer(ctx context.Context, expected, actual, language string) (Verdict, error) {
	rules := ClassifyByRules(expected, actual)
	if rules.Outcome == progress.OutcomeCorrect {
		return rules, nil
	}

	userMsg, err := render(classifyUserTemplate, struct{ Expected, Actual, Language string }{expected, actual, language})
	if err != nil {
		return rules, nil
	}

	var raw struct {
		Outcome          string `json:"outcome"`
		ErrorDescription string `json:"error_description"`
		Explanation      string `json:"explanation"`
	}
	if err := g.call(ctx, llm.PurposeClassify, classifySystemPrompt, userMsg, VerdictSchema, g.cfg.ClassifyTemperature, &raw); err != nil {
		log.Printf("contentgen: classify %q: %v; using rules", actual, err)
		return rules, nil
	}

	v := Verdict{
		Outcome:          progress.ParseOutcome(raw.Outcome),
		ErrorDescription: strings.TrimSpace(raw.ErrorDescription),
		Explanation:      strings.TrimSpace(raw.Explanation),
		Source:           "llm",
	}
	if v.Outcome == progress.OutcomeUnclassified {
		log.Printf("contentgen: unknown outcome label %q, treating as incorrect", raw.Outcome)
	}
	if !v.Outcome.IsMistake() {
		v.ErrorDescription = ""
	} else if v.ErrorDescription == "" {
		v.ErrorDescription = DescribeMistake(expected, actual)
	}
	return v, nil
}

// stripQuotes trims whitespace and any quote marks wrapping s.
func stripQuotes(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "\"'`«»“”„"))
}
