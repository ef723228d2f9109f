package tasktype

import "fmt"

// Type is the kind of exercise built for a word. The set is closed; use
// Match to branch on it so that every kind must be handled.
type Type uint8

const (
	FullTranslation Type = iota + 1
	MultipleChoice
	FillBlank
)

// All lists every task type in declaration order.
var All = [...]Type{FullTranslation, MultipleChoice, FillBlank}

// String returns the stable label used in storage and prompts.
func (t Type) String() string {
	switch t {
	case FullTranslation:
		return "full_translation"
	case MultipleChoice:
		return "multiple_choice"
	case FillBlank:
		return "fill_blank"
	}
	return fmt.Sprintf("tasktype(%d)", uint8(t))
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	return t >= FullTranslation && t <= FillBlank
}

// Parse converts a label produced by String back to a Type.
func Parse(s string) (Type, error) {
	for _, t := range All {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown task type %q", s)
}

// Match calls the arm for t and returns its result. All three arms are
// required. Match panics on an invalid Type.
func Match[R any](t Type, fullTranslation, multipleChoice, fillBlank func() R) R {
	switch t {
	case FullTranslation:
		return fullTranslation()
	case MultipleChoice:
		return multipleChoice()
	case FillBlank:
		return fillBlank()
	}
	panic(fmt.Sprintf("tasktype: invalid type %d", uint8(t)))
}
