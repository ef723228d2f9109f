package progress

import "time"

// State is the scheduling state of one word pair.
type State struct {
	Progress     int
	LastReviewed time.Time // zero if never reviewed
	NextDue      time.Time
}

// Transition is the result of applying an outcome to a State.
type Transition struct {
	From    State
	To      State
	Outcome Outcome // effective outcome that was applied
	Stage   Stage   // stage of the post-update progress

	// Changed is false for the no-op outcomes (morphological error,
	// accepted synonym).
	Changed bool
}

// Apply computes the new scheduling state for an answer outcome.
//
//   - Correct:   progress+20 (max 100), due after the interval of the new band
//   - Incorrect: progress-40 (min 0), due today
//   - MorphologicalError, SynonymAccepted: nothing changes
//
// LastReviewed is set to today only when progress changes. Unclassified
// outcomes are applied as Incorrect. Apply never fails.
func Apply(s State, outcome Outcome, now time.Time) Transition {
	today := Day(now)
	from := s
	s.Progress = Clamp(s.Progress)
	eff := outcome.Effective()

	t := Transition{From: from, Outcome: eff}

	switch eff {
	case OutcomeCorrect:
		s.Progress = min(MaxProgress, s.Progress+CorrectStep)
		s.LastReviewed = today
		s.NextDue = today.AddDate(0, 0, IntervalDays(s.Progress))
		t.Changed = true
	case OutcomeIncorrect:
		s.Progress = max(MinProgress, s.Progress-IncorrectStep)
		s.LastReviewed = today
		s.NextDue = today
		t.Changed = true
	}

	t.To = s
	t.Stage = StageFor(s.Progress)
	return t
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsDue reports whether a word with the given due date is eligible for
// priority selection on the day of now.
func IsDue(nextDue, now time.Time) bool {
	return !Day(nextDue).After(Day(now))
}
