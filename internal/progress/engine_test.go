package progress

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func testToday() time.Time {
	return Day(testNow)
}

func TestApply_CorrectIncrementsForEveryStart(t *testing.T) {
	for p := 0; p <= 100; p++ {
		tr := Apply(State{Progress: p}, OutcomeCorrect, testNow)
		want := min(100, p+20)
		if tr.To.Progress != want {
			t.Errorf("p=%d: progress = %d, want %d", p, tr.To.Progress, want)
		}
		if !tr.Changed {
			t.Errorf("p=%d: expected Changed", p)
		}
	}
}

func TestApply_IncorrectDecrementsForEveryStart(t *testing.T) {
	for p := 0; p <= 100; p++ {
		tr := Apply(State{Progress: p}, OutcomeIncorrect, testNow)
		want := max(0, p-40)
		if tr.To.Progress != want {
			t.Errorf("p=%d: progress = %d, want %d", p, tr.To.Progress, want)
		}
		if !tr.To.NextDue.Equal(testToday()) {
			t.Errorf("p=%d: next due = %v, want today", p, tr.To.NextDue)
		}
		if !tr.To.LastReviewed.Equal(testToday()) {
			t.Errorf("p=%d: last reviewed = %v, want today", p, tr.To.LastReviewed)
		}
	}
}

func TestApply_CorrectIntervalMatchesTable(t *testing.T) {
	tests := []struct {
		start    int
		wantProg int
		wantDays int
	}{
		{-20, 0 + 20, 3}, // clamped to 0 first
		{0, 20, 3},
		{15, 35, 3},
		{20, 40, 7},
		{35, 55, 7},
		{40, 60, 14},
		{45, 65, 14},
		{59, 79, 14},
		{60, 80, 30},
		{79, 99, 30},
		{80, 100, 120},
		{95, 100, 120},
		{100, 100, 120},
	}
	for _, tt := range tests {
		tr := Apply(State{Progress: tt.start}, OutcomeCorrect, testNow)
		if tr.To.Progress != tt.wantProg {
			t.Errorf("start %d: progress = %d, want %d", tt.start, tr.To.Progress, tt.wantProg)
		}
		gotDays := int(tr.To.NextDue.Sub(tr.To.LastReviewed).Hours() / 24)
		if gotDays != tt.wantDays {
			t.Errorf("start %d: interval = %d days, want %d", tt.start, gotDays, tt.wantDays)
		}
	}
}

func TestApply_NoOpOutcomesKeepState(t *testing.T) {
	lastReviewed := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	nextDue := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	for _, o := range []Outcome{OutcomeMorphologicalError, OutcomeSynonymAccepted} {
		for p := 0; p <= 100; p += 5 {
			s := State{Progress: p, LastReviewed: lastReviewed, NextDue: nextDue}
			tr := Apply(s, o, testNow)
			if tr.To != s {
				t.Errorf("%s p=%d: state changed to %+v", o, p, tr.To)
			}
			if tr.Changed {
				t.Errorf("%s p=%d: expected Changed=false", o, p)
			}
		}
	}
}

func TestApply_UnclassifiedActsAsIncorrect(t *testing.T) {
	tr := Apply(State{Progress: 70}, OutcomeUnclassified, testNow)
	if tr.Outcome != OutcomeIncorrect {
		t.Fatalf("outcome = %q, want incorrect", tr.Outcome)
	}
	if tr.To.Progress != 30 {
		t.Errorf("progress = %d, want 30", tr.To.Progress)
	}
}

func TestApply_Scenario_CorrectFromFortyFive(t *testing.T) {
	tr := Apply(State{Progress: 45}, OutcomeCorrect, testNow)
	if tr.To.Progress != 65 {
		t.Errorf("progress = %d, want 65", tr.To.Progress)
	}
	if !tr.To.NextDue.Equal(testToday().AddDate(0, 0, 14)) {
		t.Errorf("next due = %v, want today+14", tr.To.NextDue)
	}
	if tr.Stage != StageConsolidation {
		t.Errorf("stage = %q, want %q", tr.Stage, StageConsolidation)
	}
}

func TestApply_Scenario_IncorrectFromTenClamps(t *testing.T) {
	tr := Apply(State{Progress: 10}, OutcomeIncorrect, testNow)
	if tr.To.Progress != 0 {
		t.Errorf("progress = %d, want 0", tr.To.Progress)
	}
	if !tr.To.NextDue.Equal(testToday()) {
		t.Errorf("next due = %v, want today", tr.To.NextDue)
	}
}

func TestApply_PreservesFromState(t *testing.T) {
	s := State{Progress: 30}
	tr := Apply(s, OutcomeCorrect, testNow)
	if tr.From != s {
		t.Errorf("From = %+v, want %+v", tr.From, s)
	}
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want bool
	}{
		{"past", testNow.AddDate(0, 0, -3), true},
		{"earlier today", Day(testNow), true},
		{"later today", testNow.Add(5 * time.Hour), true},
		{"tomorrow", Day(testNow).AddDate(0, 0, 1), false},
	}
	for _, tt := range tests {
		if got := IsDue(tt.due, testNow); got != tt.want {
			t.Errorf("%s: IsDue = %v, want %v", tt.name, got, tt.want)
		}
	}
}
