package llm

import (
	"context"
	"slices"
)

type purposeKey struct{}

// What the trainer asks a model for. The label is stored with every
// recorded call.
const (
	PurposeSentence    = "sentence"
	PurposeTranslation = "translation"
	PurposeDistractors = "distractors"
	PurposeClassify    = "classify"
)

var Purposes = []string{PurposeSentence, PurposeTranslation, PurposeDistractors, PurposeClassify}

func IsPurpose(s string) bool { return slices.Contains(Purposes, s) }

func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return "unknown"
}
