// Package contentgen produces the text content of training tasks: practice
// sentences, reference translations, multiple-choice distractors, and
// answer verdicts.
package contentgen

import (
	"context"
	"errors"

	"github.com/abhisek/lasty/internal/progress"
)

// ErrUnavailable is returned when content cannot be produced, either
// because no model is configured or because the model gave nothing usable.
var ErrUnavailable = errors.New("content generation unavailable")

// SentenceRequest describes the practice sentence to generate.
type SentenceRequest struct {
	Word     string // target-language word the sentence must contain
	Language string // language of the sentence
	Topics   []string

	// GrammarHint names grammar patterns the learner keeps getting wrong.
	// Optional.
	GrammarHint string
}

// Verdict is the classification of one answer.
type Verdict struct {
	Outcome progress.Outcome

	// ErrorDescription is a "Category: detail" label for the ledger, set
	// when the answer is a mistake.
	ErrorDescription string

	// Explanation is a short note for the learner. Optional.
	Explanation string

	// Source is "llm" or "rules".
	Source string
}

// Capability is the text-generation collaborator of the scheduler. Every
// method may fail; any error means the content is unavailable and callers
// degrade instead of failing.
type Capability interface {
	GenerateSentence(ctx context.Context, req SentenceRequest) (string, error)

	// GenerateTranslation translates sentence into language.
	GenerateTranslation(ctx context.Context, sentence, language string) (string, error)

	// GenerateDistractors returns up to count plausible wrong answers for
	// a multiple-choice task whose answer is correct.
	GenerateDistractors(ctx context.Context, correct, language string, count int) ([]string, error)

	ClassifyAnswer(ctx context.Context, expected, actual, language string) (Verdict, error)
}

// Offline is a Capability for running without a model. Generation is
// always unavailable; answers are classified by the rule set.
type Offline struct{}

func (Offline) GenerateSentence(context.Context, SentenceRequest) (string, error) {
	return "", ErrUnavailable
}

func (Offline) GenerateTranslation(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

func (Offline) GenerateDistractors(context.Context, string, string, int) ([]string, error) {
	return nil, ErrUnavailable
}

func (Offline) ClassifyAnswer(_ context.Context, expected, actual, _ string) (Verdict, error) {
	return ClassifyByRules(expected, actual), nil
}
