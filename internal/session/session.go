// Package session runs training sessions: it serves one task at a time,
// applies each answer, and prepares the next task in the background.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lasty/internal/compose"
	"github.com/abhisek/lasty/internal/contentgen"
	"github.com/abhisek/lasty/internal/mistakes"
	"github.com/abhisek/lasty/internal/progress"
	"github.com/abhisek/lasty/internal/selector"
	"github.com/abhisek/lasty/internal/store"
)

// Deps are the collaborators of a session.
type Deps struct {
	Users    store.UserRepo
	Words    store.WordRepo
	Events   store.EventRepo // optional
	Selector *selector.Selector
	Composer *compose.Composer
	Content  contentgen.Capability
	Mistakes *mistakes.Aggregator
}

// Config controls session behavior.
type Config struct {
	// HistoryLimit is how many ledger entries per language are loaded to
	// steer sentence generation.
	HistoryLimit int

	// IdleTimeout is how long a session may go without activity before
	// the Manager ends it.
	IdleTimeout time.Duration

	// ReapInterval is how often the Manager looks for idle sessions.
	ReapInterval time.Duration
}

// DefaultConfig returns recommended defaults.
func DefaultConfig() Config {
	return Config{
		HistoryLimit: 5,
		IdleTimeout:  30 * time.Minute,
		ReapInterval: time.Minute,
	}
}

// Result is the outcome of one submitted answer.
type Result struct {
	Outcome    progress.Outcome
	Verdict    contentgen.Verdict
	Transition progress.Transition
	Expected   string
	Progress   int
	NextDue    time.Time
	Stage      progress.Stage
	Message    string

	// Next is the task now being served, nil once the session has ended.
	Next    *compose.Task
	Ended   bool
	Summary *Summary // set when Ended
}

// Session is one training session of one user.
//
// Submit, Advance and End are serialized. Fields read by the prefetch
// goroutine or by the Manager's reaper are guarded by mu.
type Session struct {
	ID        string
	UserID    string
	Languages []string

	deps     Deps
	cfg      Config
	composer *compose.Composer
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	op     sync.Mutex
	queue  []store.WordCard
	cursor int
	answer *pendingAnswer

	mu           sync.Mutex
	phase        Phase
	current      *compose.Task
	pending      *prefetch
	history      map[string][]store.ErrorRecord
	results      map[string]*WordResult
	startedAt    time.Time
	lastActivity time.Time
	summary      *Summary
	err          error
}

// pendingAnswer is an answer whose processing stopped part way. Once any
// of its writes has landed, a retry of Submit resumes it instead of
// applying the outcome twice.
type pendingAnswer struct {
	taskID     string
	answer     string
	verdict    contentgen.Verdict
	transition progress.Transition
	saved      bool
	recorded   bool
	logged     bool
	applied    bool
}

// committed reports whether any write of the answer has landed.
func (pa *pendingAnswer) committed() bool {
	return pa.saved || pa.recorded || pa.logged
}

func newSession(deps Deps, cfg Config, userID string, languages []string, now func() time.Time) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	t := now()
	return &Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		Languages:    languages,
		deps:         deps,
		cfg:          cfg,
		now:          now,
		ctx:          ctx,
		cancel:       cancel,
		phase:        PhaseIdle,
		history:      make(map[string][]store.ErrorRecord),
		results:      make(map[string]*WordResult),
		startedAt:    t,
		lastActivity: t,
	}
}

// Start selects the words of a new session, builds the first task and
// begins preparing the second. When the user has no words the returned
// session is already ended and the error is ErrNoWords.
func Start(ctx context.Context, deps Deps, cfg Config, userID string, languages []string, size int) (*Session, error) {
	return start(ctx, deps, cfg, userID, languages, size, time.Now)
}

func start(ctx context.Context, deps Deps, cfg Config, userID string, languages []string, size int, now func() time.Time) (*Session, error) {
	s := newSession(deps, cfg, userID, languages, now)

	words, err := deps.Selector.SelectForSession(ctx, userID, languages, size)
	if err != nil {
		s.cancel()
		return nil, fmt.Errorf("start session: %w", err)
	}
	if len(words) == 0 {
		s.cancel()
		s.mu.Lock()
		s.phase = PhaseEnded
		s.err = ErrNoWords
		s.summary = s.buildSummary(s.startedAt)
		s.mu.Unlock()
		return s, ErrNoWords
	}

	var learner compose.Learner
	if deps.Users != nil {
		u, err := deps.Users.GetUser(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.cancel()
			return nil, fmt.Errorf("start session: %w", err)
		}
		learner = compose.LearnerFrom(u)
	}

	s.queue = words
	s.composer = deps.Composer.ForSession(learner, words)
	for _, card := range words {
		s.results[card.ID] = &WordResult{
			WordID:         card.ID,
			Native:         card.NativeText,
			Target:         card.TargetText,
			Language:       card.Language,
			ProgressBefore: card.Progress,
			ProgressAfter:  card.Progress,
			Stage:          progress.StageFor(card.Progress),
			NextDue:        card.NextDue,
		}
		if _, ok := s.history[card.Language]; !ok {
			s.history[card.Language] = s.loadHistory(ctx, card.Language)
		}
	}
	s.mu.Lock()
	s.phase = PhaseActive
	s.mu.Unlock()

	s.logSession(ctx, ActionStart)

	first := s.composer.Build(ctx, words[0], s.history[words[0].Language])
	s.serve(first)
	return s, nil
}

// serve makes task current and prefetches the following word, if any.
func (s *Session) serve(task *compose.Task) {
	s.mu.Lock()
	s.current = task
	s.phase = PhaseServing
	s.mu.Unlock()

	if s.cursor+1 < len(s.queue) {
		s.startPrefetch(s.queue[s.cursor+1])
	}
}

// Current returns the task awaiting an answer, nil if none.
func (s *Session) Current() *compose.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseServing {
		return nil
	}
	return s.current
}

// Phase returns the lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Err returns why the session ended early, if it did.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Position returns the 1-based number of the current word and the session
// length.
func (s *Session) Position() (int, int) {
	s.op.Lock()
	defer s.op.Unlock()
	return min(s.cursor+1, len(s.queue)), len(s.queue)
}

// LastActivity returns the time of the last start, submit or advance.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = s.now()
	s.mu.Unlock()
}

// Submit applies an answer to the current task, in order: classify,
// update progress, save it, record the mistake, log the answer. Only then
// does it advance to the next task, waiting for the prefetch if needed.
//
// A repository failure leaves the current task in place; submitting again
// resumes where the failure happened. For multiple-choice tasks the
// answer may be the 1-based option number.
func (s *Session) Submit(ctx context.Context, answer string) (*Result, error) {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	phase, task := s.phase, s.current
	s.mu.Unlock()
	switch {
	case phase == PhaseEnded || s.ctx.Err() != nil:
		return nil, ErrEnded
	case phase == PhaseAdvancing:
		return nil, ErrAdvancePending
	case task == nil:
		return nil, ErrEnded
	}
	s.touch()

	card := &s.queue[s.cursor]
	pa := s.answer
	if pa == nil || pa.taskID != task.ID || !pa.committed() {
		answer = resolveChoice(task, answer)
		verdict := s.classify(ctx, task, answer)
		pa = &pendingAnswer{
			taskID:  task.ID,
			answer:  answer,
			verdict: verdict,
			transition: progress.Apply(progress.State{
				Progress:     card.Progress,
				LastReviewed: card.LastReviewed,
				NextDue:      card.NextDue,
			}, verdict.Outcome, s.now()),
		}
		s.answer = pa
	}
	tr := pa.transition

	if tr.Changed && !pa.saved {
		if err := s.deps.Words.SaveWordProgress(ctx, card.ID, tr.To.Progress, tr.To.LastReviewed, tr.To.NextDue); err != nil {
			return nil, fmt.Errorf("save progress: %w", err)
		}
		pa.saved = true
	}

	if pa.verdict.Outcome.IsMistake() && !pa.recorded && s.deps.Mistakes != nil {
		if err := s.deps.Mistakes.Record(ctx, s.UserID, card.Language, pa.verdict.ErrorDescription); err != nil {
			return nil, err
		}
		pa.recorded = true
		s.refreshHistory(ctx, card.Language)
	}

	if s.deps.Events != nil && !pa.logged {
		err := s.deps.Events.AppendAnswer(ctx, store.AnswerEventData{
			SessionID:        s.ID,
			UserID:           s.UserID,
			WordID:           card.ID,
			Language:         card.Language,
			TaskType:         task.Type.String(),
			Expected:         task.Answer,
			Answer:           pa.answer,
			Outcome:          string(pa.verdict.Outcome),
			ErrorDescription: pa.verdict.ErrorDescription,
			ProgressBefore:   tr.From.Progress,
			ProgressAfter:    tr.To.Progress,
			Degraded:         task.Degraded,
		})
		if err != nil {
			return nil, fmt.Errorf("log answer: %w", err)
		}
		pa.logged = true
	}

	if !pa.applied {
		card.Progress = tr.To.Progress
		card.LastReviewed = tr.To.LastReviewed
		card.NextDue = tr.To.NextDue
		s.mu.Lock()
		r := s.results[card.ID]
		r.ProgressAfter = tr.To.Progress
		r.Stage = tr.Stage
		r.NextDue = tr.To.NextDue
		r.Answered = true
		r.Outcome = tr.Outcome
		s.mu.Unlock()
		pa.applied = true
	}

	res := &Result{
		Outcome:    pa.verdict.Outcome,
		Verdict:    pa.verdict,
		Transition: tr,
		Expected:   task.Answer,
		Progress:   tr.To.Progress,
		NextDue:    tr.To.NextDue,
		Stage:      tr.Stage,
		Message:    Feedback(pa.verdict.Outcome, task.Answer),
	}
	s.answer = nil

	s.cursor++
	if s.cursor >= len(s.queue) {
		res.Ended = true
		res.Summary = s.finish(ctx)
		return res, nil
	}

	s.mu.Lock()
	s.phase = PhaseAdvancing
	s.current = nil
	s.mu.Unlock()

	next, err := s.advance(ctx)
	if err != nil {
		if errors.Is(err, ErrEnded) {
			res.Ended = true
			res.Summary = s.Summary()
			return res, nil
		}
		return res, fmt.Errorf("%w: %w", ErrAdvancePending, err)
	}
	res.Next = next
	return res, nil
}

// Advance resumes a Submit whose wait for the next task was interrupted.
func (s *Session) Advance(ctx context.Context) (*compose.Task, error) {
	s.op.Lock()
	defer s.op.Unlock()

	switch s.Phase() {
	case PhaseAdvancing:
		return s.advance(ctx)
	case PhaseServing:
		return s.Current(), nil
	}
	return nil, ErrEnded
}

// advance takes the prefetched task and serves it. The caller holds op.
func (s *Session) advance(ctx context.Context) (*compose.Task, error) {
	next, err := s.takePrefetch(ctx)
	if err != nil {
		return nil, err
	}
	if s.ctx.Err() != nil {
		return nil, ErrEnded
	}
	s.touch()
	s.serve(next)
	return next, nil
}

// End stops the session. The in-flight prefetch is cancelled and its task
// discarded. End is idempotent and returns the session summary.
func (s *Session) End() *Summary {
	// Cancel first so a Submit waiting on the prefetch returns promptly.
	s.cancel()

	s.op.Lock()
	defer s.op.Unlock()
	return s.finish(context.Background())
}

// finish ends the session once. The caller holds op.
func (s *Session) finish(ctx context.Context) *Summary {
	s.cancel()
	s.stopPrefetch()

	s.mu.Lock()
	if s.phase == PhaseEnded {
		sum := s.summary
		s.mu.Unlock()
		return sum
	}
	s.phase = PhaseEnded
	s.current = nil
	s.summary = s.buildSummary(s.now())
	sum := s.summary
	s.mu.Unlock()

	s.logSession(context.WithoutCancel(ctx), ActionEnd)
	return sum
}

// Summary returns the session totals so far, or the final totals once the
// session has ended.
func (s *Session) Summary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary != nil {
		return s.summary
	}
	return s.buildSummary(s.now())
}

// classify grades an answer, falling back to the rule set when the
// capability fails.
func (s *Session) classify(ctx context.Context, task *compose.Task, answer string) contentgen.Verdict {
	v, err := s.deps.Content.ClassifyAnswer(ctx, task.Answer, answer, task.Language)
	if err != nil {
		log.Printf("session: classify answer: %v; using rules", err)
		return contentgen.ClassifyByRules(task.Answer, answer)
	}
	if v.Outcome == progress.OutcomeUnclassified {
		log.Printf("session: unclassified answer %q for %q, applying as incorrect", answer, task.Answer)
	}
	if v.Outcome.IsMistake() && strings.TrimSpace(v.ErrorDescription) == "" {
		v.ErrorDescription = contentgen.DescribeMistake(task.Answer, answer)
	}
	return v
}

func (s *Session) loadHistory(ctx context.Context, language string) []store.ErrorRecord {
	if s.deps.Mistakes == nil {
		return nil
	}
	recs, err := s.deps.Mistakes.History(ctx, s.UserID, language, s.cfg.HistoryLimit)
	if err != nil {
		log.Printf("session: load mistakes for %s: %v", language, err)
		return nil
	}
	return recs
}

func (s *Session) refreshHistory(ctx context.Context, language string) {
	recs := s.loadHistory(ctx, language)
	if recs == nil {
		return
	}
	s.mu.Lock()
	s.history[language] = recs
	s.mu.Unlock()
}

func (s *Session) logSession(ctx context.Context, action string) {
	if s.deps.Events == nil {
		return
	}
	s.mu.Lock()
	data := store.SessionEventData{
		SessionID:    s.ID,
		UserID:       s.UserID,
		Action:       action,
		Words:        len(s.queue),
		DurationSecs: int(s.now().Sub(s.startedAt).Seconds()),
	}
	if s.summary != nil {
		data.Answered = s.summary.Answered
		data.Correct = s.summary.Correct
	}
	s.mu.Unlock()

	if err := s.deps.Events.AppendSession(ctx, data); err != nil {
		log.Printf("session: log session %s: %v", action, err)
	}
}

// resolveChoice maps an option number to the option text.
func resolveChoice(task *compose.Task, answer string) string {
	if !task.HasOptions() {
		return answer
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > len(task.Options) {
		return answer
	}
	return task.Options[n-1]
}

// Feedback returns the message shown to the learner for an outcome.
func Feedback(outcome progress.Outcome, expected string) string {
	switch outcome.Effective() {
	case progress.OutcomeCorrect:
		return "Correct! Well done!"
	case progress.OutcomeSynonymAccepted:
		return fmt.Sprintf("Accepted as a synonym. The expected answer is %q.", expected)
	case progress.OutcomeMorphologicalError:
		return fmt.Sprintf("Answer accepted. Mind the form: %q.", expected)
	}
	return fmt.Sprintf("Incorrect. The correct answer is %q.", expected)
}
