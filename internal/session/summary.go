package session

import (
	"time"

	"github.com/abhisek/lasty/internal/progress"
)

// Summary holds the totals shown when a session ends.
type Summary struct {
	SessionID string
	Duration  time.Duration
	Words     int
	Answered  int
	Correct   int
	Accepted  int // synonyms and wrong forms of the right word
	Incorrect int
	Accuracy  float64
	Results   []WordResult
}

// buildSummary creates a Summary from the session counters. The caller
// holds s.mu.
func (s *Session) buildSummary(end time.Time) *Summary {
	sum := &Summary{
		SessionID: s.ID,
		Duration:  end.Sub(s.startedAt),
		Words:     len(s.queue),
	}
	for _, card := range s.queue {
		r, ok := s.results[card.ID]
		if !ok {
			continue
		}
		sum.Results = append(sum.Results, *r)
		if !r.Answered {
			continue
		}
		sum.Answered++
		switch r.Outcome.Effective() {
		case progress.OutcomeCorrect:
			sum.Correct++
		case progress.OutcomeIncorrect:
			sum.Incorrect++
		default:
			sum.Accepted++
		}
	}
	if sum.Answered > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.Answered)
	}
	return sum
}
