package contentgen

import (
	"strings"

	"github.com/abhisek/lasty/internal/progress"
)

// Ledger descriptions produced by the rule set.
const (
	DescLetterSubstitution = "Spelling: Letter substitution"
	DescMorphological      = "Grammar: Morphological error"
	DescWrongWord          = "Vocabulary: Wrong word choice"
)

// maxSubstitutions is the largest number of differing letters, in answers
// of equal length, that still counts as a spelling slip.
const maxSubstitutions = 2

// ClassifyByRules compares an answer with the expected word without a
// model:
//
//   - same text, ignoring case and surrounding space: correct
//   - one contains the other: morphological error (right word, wrong form)
//   - otherwise incorrect, described by DescribeMistake
func ClassifyByRules(expected, actual string) Verdict {
	exp, act := Normalize(expected), Normalize(actual)
	v := Verdict{Source: "rules"}

	switch {
	case act == exp:
		v.Outcome = progress.OutcomeCorrect
	case act != "" && (strings.Contains(exp, act) || strings.Contains(act, exp)):
		v.Outcome = progress.OutcomeMorphologicalError
		v.ErrorDescription = DescMorphological
	default:
		v.Outcome = progress.OutcomeIncorrect
		v.ErrorDescription = DescribeMistake(expected, actual)
	}
	return v
}

// DescribeMistake labels a wrong answer for the error ledger.
func DescribeMistake(expected, actual string) string {
	exp, act := []rune(Normalize(expected)), []rune(Normalize(actual))

	if len(exp) == len(act) {
		diff := 0
		for i := range exp {
			if exp[i] != act[i] {
				diff++
			}
		}
		if diff <= maxSubstitutions {
			return DescLetterSubstitution
		}
	}

	e, a := string(exp), string(act)
	if a != "" && (strings.Contains(e, a) || strings.Contains(a, e)) {
		return DescMorphological
	}
	return DescWrongWord
}

// Normalize lowercases s, trims it, and collapses inner whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
