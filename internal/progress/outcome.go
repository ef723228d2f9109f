package progress

import "strings"

// Outcome is the classified result of a single answer.
type Outcome string

const (
	OutcomeCorrect            Outcome = "correct"
	OutcomeIncorrect          Outcome = "incorrect"
	OutcomeMorphologicalError Outcome = "morphological_error"
	OutcomeSynonymAccepted    Outcome = "synonym_accepted"

	// OutcomeUnclassified is produced when a classifier returns a label
	// outside the known set. It is applied as OutcomeIncorrect.
	OutcomeUnclassified Outcome = "unclassified"
)

// Outcomes lists the outcomes a classifier may legitimately return.
var Outcomes = []Outcome{
	OutcomeCorrect,
	OutcomeIncorrect,
	OutcomeMorphologicalError,
	OutcomeSynonymAccepted,
}

// ParseOutcome maps a label to an Outcome. Matching ignores case and
// surrounding whitespace; unknown labels map to OutcomeUnclassified.
func ParseOutcome(s string) Outcome {
	label := strings.ToLower(strings.TrimSpace(s))
	label = strings.ReplaceAll(label, "-", "_")
	label = strings.ReplaceAll(label, " ", "_")
	switch label {
	case "correct":
		return OutcomeCorrect
	case "incorrect", "wrong":
		return OutcomeIncorrect
	case "morphological_error", "morphological", "morphology":
		return OutcomeMorphologicalError
	case "synonym_accepted", "synonym":
		return OutcomeSynonymAccepted
	}
	return OutcomeUnclassified
}

// Effective returns the outcome that is actually applied to progress.
func (o Outcome) Effective() Outcome {
	switch o {
	case OutcomeCorrect, OutcomeIncorrect, OutcomeMorphologicalError, OutcomeSynonymAccepted:
		return o
	}
	return OutcomeIncorrect
}

// Accepted reports whether the answer counts as a pass for the learner
// (correct, or a near miss that is not penalized).
func (o Outcome) Accepted() bool {
	switch o {
	case OutcomeCorrect, OutcomeMorphologicalError, OutcomeSynonymAccepted:
		return true
	}
	return false
}

// IsMistake reports whether the outcome should be recorded in the
// learner's error ledger.
func (o Outcome) IsMistake() bool {
	return o.Effective() == OutcomeIncorrect
}
