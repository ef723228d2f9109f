package progress

import "testing"

func TestBands_CoverFullRangeWithoutGaps(t *testing.T) {
	next := MinProgress
	for i, b := range Bands {
		if b.Min != next {
			t.Fatalf("band %d starts at %d, want %d", i, b.Min, next)
		}
		if b.Max < b.Min {
			t.Fatalf("band %d: max %d < min %d", i, b.Max, b.Min)
		}
		next = b.Max + 1
	}
	if next != MaxProgress+1 {
		t.Fatalf("bands end at %d, want %d", next-1, MaxProgress)
	}
}

func TestIntervalDays_EachBand(t *testing.T) {
	tests := []struct {
		progress int
		want     int
	}{
		{0, 1}, {19, 1},
		{20, 3}, {39, 3},
		{40, 7}, {55, 7}, {59, 7},
		{60, 14}, {79, 14},
		{80, 30}, {99, 30},
		{100, 120},
	}
	for _, tt := range tests {
		if got := IntervalDays(tt.progress); got != tt.want {
			t.Errorf("IntervalDays(%d) = %d, want %d", tt.progress, got, tt.want)
		}
	}
}

func TestStageFor(t *testing.T) {
	tests := []struct {
		progress int
		want     Stage
	}{
		{5, StageInitialMemorization},
		{25, StageFirstRepetition},
		{45, StageMedium},
		{65, StageConsolidation},
		{85, StageControlRepetition},
		{100, StageLongTermRetention},
	}
	for _, tt := range tests {
		if got := StageFor(tt.progress); got != tt.want {
			t.Errorf("StageFor(%d) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-5) != 0 || Clamp(150) != 100 || Clamp(42) != 42 {
		t.Fatal("Clamp does not bound to [0,100]")
	}
}

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		in   string
		want Outcome
	}{
		{"correct", OutcomeCorrect},
		{" Correct ", OutcomeCorrect},
		{"incorrect", OutcomeIncorrect},
		{"morphological_error", OutcomeMorphologicalError},
		{"Morphological Error", OutcomeMorphologicalError},
		{"synonym", OutcomeSynonymAccepted},
		{"synonym-accepted", OutcomeSynonymAccepted},
		{"partially right", OutcomeUnclassified},
		{"", OutcomeUnclassified},
	}
	for _, tt := range tests {
		if got := ParseOutcome(tt.in); got != tt.want {
			t.Errorf("ParseOutcome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutcome_AcceptedAndMistake(t *testing.T) {
	if !OutcomeSynonymAccepted.Accepted() || !OutcomeMorphologicalError.Accepted() {
		t.Error("near misses should be accepted")
	}
	if OutcomeIncorrect.Accepted() || OutcomeUnclassified.Accepted() {
		t.Error("incorrect outcomes should not be accepted")
	}
	if !OutcomeUnclassified.IsMistake() {
		t.Error("unclassified should count as a mistake")
	}
	if OutcomeMorphologicalError.IsMistake() {
		t.Error("morphological error is not recorded as a mistake")
	}
}
