package progress

// MinProgress and MaxProgress bound a word's mastery score.
const (
	MinProgress = 0
	MaxProgress = 100
)

// CorrectStep is added to progress on a correct answer.
const CorrectStep = 20

// IncorrectStep is subtracted from progress on an incorrect answer.
const IncorrectStep = 40

// Band is an inclusive progress range with its review interval and stage name.
type Band struct {
	Min          int
	Max          int
	IntervalDays int
	Stage        Stage
}

// Stage is the human-readable name of a progress band.
type Stage string

const (
	StageInitialMemorization Stage = "Initial Memorization"
	StageFirstRepetition     Stage = "First Repetition"
	StageMedium              Stage = "Medium Stage"
	StageConsolidation       Stage = "Consolidation"
	StageControlRepetition   Stage = "Control Repetition"
	StageLongTermRetention   Stage = "Long-term Retention"
)

// Bands is the interval table, ordered by progress.
var Bands = []Band{
	{Min: 0, Max: 19, IntervalDays: 1, Stage: StageInitialMemorization},
	{Min: 20, Max: 39, IntervalDays: 3, Stage: StageFirstRepetition},
	{Min: 40, Max: 59, IntervalDays: 7, Stage: StageMedium},
	{Min: 60, Max: 79, IntervalDays: 14, Stage: StageConsolidation},
	{Min: 80, Max: 99, IntervalDays: 30, Stage: StageControlRepetition},
	{Min: 100, Max: 100, IntervalDays: 120, Stage: StageLongTermRetention},
}

// BandFor returns the band containing p. Out-of-range values are clamped.
func BandFor(p int) Band {
	p = Clamp(p)
	for _, b := range Bands {
		if p >= b.Min && p <= b.Max {
			return b
		}
	}
	return Bands[len(Bands)-1]
}

// IntervalDays returns the review interval for a progress value.
func IntervalDays(p int) int {
	return BandFor(p).IntervalDays
}

// StageFor returns the stage name for a progress value.
func StageFor(p int) Stage {
	return BandFor(p).Stage
}

// Clamp limits p to [MinProgress, MaxProgress].
func Clamp(p int) int {
	if p < MinProgress {
		return MinProgress
	}
	if p > MaxProgress {
		return MaxProgress
	}
	return p
}
