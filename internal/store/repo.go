package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks a failure of the underlying database. Callers may
	// retry the operation.
	ErrUnavailable = errors.New("store unavailable")
)

// unavailable wraps a driver error so that errors.Is matches both
// ErrUnavailable and the original cause.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // LLM events only
}

// UserProfile is a learner known to the trainer.
type UserProfile struct {
	ID                string
	Login             string
	NativeLanguage    string
	LearningLanguages []string
	PreferredTopics   []string
	CreatedAt         time.Time
}

// WordCard is one word pair owned by a user.
type WordCard struct {
	ID         string
	UserID     string
	NativeText string
	TargetText string
	Language   string

	// Progress is the mastery score in [0, 100].
	Progress     int
	LastReviewed time.Time // zero if never reviewed
	NextDue      time.Time
	CreatedAt    time.Time
}

// ErrorKey identifies one entry of a user's error ledger.
type ErrorKey struct {
	UserID      string
	Language    string
	Description string
}

// ErrorRecord counts how often a user made the same kind of mistake.
type ErrorRecord struct {
	ID int64
	ErrorKey
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
}

// UserRepo manages learner profiles.
type UserRepo interface {
	CreateUser(ctx context.Context, u *UserProfile) error
	GetUser(ctx context.Context, id string) (*UserProfile, error)
	GetUserByLogin(ctx context.Context, login string) (*UserProfile, error)
}

// WordRepo reads and updates word cards.
type WordRepo interface {
	// DueWords returns the user's cards with NextDue <= cutoff. An empty
	// languages slice matches every language.
	DueWords(ctx context.Context, userID string, languages []string, cutoff time.Time) ([]WordCard, error)

	// OtherWords returns the user's cards with NextDue > cutoff.
	OtherWords(ctx context.Context, userID string, languages []string, cutoff time.Time) ([]WordCard, error)

	// SaveWordProgress persists the scheduling state of one card.
	SaveWordProgress(ctx context.Context, wordID string, progress int, lastReviewed, nextDue time.Time) error

	AddWord(ctx context.Context, card *WordCard) error
	GetWord(ctx context.Context, id string) (*WordCard, error)
	ListWords(ctx context.Context, userID, language string) ([]WordCard, error)
}

// ErrorRepo stores the per-user error ledger.
type ErrorRepo interface {
	// FindError returns the record for key, or nil if none exists.
	FindError(ctx context.Context, key ErrorKey) (*ErrorRecord, error)

	// UpsertError creates the record for key with count 1, or increments
	// the count of the existing record, in a single statement.
	UpsertError(ctx context.Context, key ErrorKey, seen time.Time) error

	// ListErrors returns the ledger ordered by count, most frequent first.
	// An empty language matches every language; limit 0 means no limit.
	ListErrors(ctx context.Context, userID, language string, limit int) ([]ErrorRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates LLM calls for one purpose.
type LLMPurposeUsage struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// LLMModelUsage aggregates LLM calls for one model.
type LLMModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// AnswerEventData records one answered task.
type AnswerEventData struct {
	SessionID        string
	UserID           string
	WordID           string
	Language         string
	TaskType         string
	Expected         string
	Answer           string
	Outcome          string
	ErrorDescription string
	ProgressBefore   int
	ProgressAfter    int
	Degraded         bool
}

// SessionEventData records a session lifecycle change.
type SessionEventData struct {
	SessionID    string
	UserID       string
	Action       string // "start" or "end"
	Words        int
	Answered     int
	Correct      int
	DurationSecs int
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	AppendAnswer(ctx context.Context, data AnswerEventData) error
	AppendSession(ctx context.Context, data SessionEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)
	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}

// ProgressCount is the number of a user's words at one progress value.
type ProgressCount struct {
	Progress int `db:"progress"`
	Words    int `db:"words"`
}

// WordTotals summarizes a user's vocabulary.
type WordTotals struct {
	Total       int     `db:"total"`
	Mastered    int     `db:"mastered"`
	Ready       int     `db:"ready"`
	AvgProgress float64 `db:"avg_progress"`
}

// DailyActivity counts answers given on one day.
type DailyActivity struct {
	Day      time.Time
	Answered int
	Correct  int
}

// StatsRepo serves read-only learning statistics.
type StatsRepo interface {
	ProgressDistribution(ctx context.Context, userID, language string) ([]ProgressCount, error)
	Totals(ctx context.Context, userID, language string, cutoff time.Time) (*WordTotals, error)
	RecentActivity(ctx context.Context, userID string, since time.Time) ([]DailyActivity, error)
}
