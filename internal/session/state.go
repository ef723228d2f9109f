package session

import (
	"errors"
	"time"

	"github.com/abhisek/lasty/internal/progress"
)

var (
	// ErrNoWords is reported when the learner has no words to train. The
	// session is ended as soon as it starts.
	ErrNoWords = errors.New("no words to train")

	// ErrEnded is returned by operations on an ended session.
	ErrEnded = errors.New("session ended")

	// ErrNoSession is returned by the Manager when the user has no
	// active session.
	ErrNoSession = errors.New("no active session")

	// ErrAdvancePending is returned by Submit when the previous answer was
	// recorded but the wait for the next task was interrupted. Call
	// Advance to resume.
	ErrAdvancePending = errors.New("answer recorded, next task pending")

	// ErrPrefetchInFlight is the panic value when a second prefetch is
	// started while one is still running.
	ErrPrefetchInFlight = errors.New("prefetch already in flight")
)

// Phase is the lifecycle phase of a session.
type Phase int

const (
	PhaseIdle      Phase = iota // Created, not started
	PhaseActive                 // Words loaded, first task being built
	PhaseServing                // Current task awaits an answer
	PhaseAdvancing              // Answer recorded, waiting for the next task
	PhaseEnded                  // Finished or abandoned
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseServing:
		return "serving"
	case PhaseAdvancing:
		return "advancing"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// Session actions recorded in the session log.
const (
	ActionStart = "start"
	ActionEnd   = "end"
)

// WordResult tracks one word's performance within a single session.
type WordResult struct {
	WordID         string
	Native         string
	Target         string
	Language       string
	ProgressBefore int
	ProgressAfter  int
	Stage          progress.Stage
	NextDue        time.Time
	Answered       bool
	Outcome        progress.Outcome
}
