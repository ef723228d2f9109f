package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Manager keeps at most one active session per user and ends sessions
// that have been idle for too long.
type Manager struct {
	deps Deps
	cfg  Config
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	scheduler *gocron.Scheduler
}

// NewManager creates a Manager. Call StartReaper to enable idle cleanup.
func NewManager(deps Deps, cfg Config) *Manager {
	return &Manager{
		deps:      deps,
		cfg:       cfg,
		now:       time.Now,
		sessions:  make(map[string]*Session),
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start begins a new session for the user, ending any session the user
// already has. With no words to train it returns the ended session and
// ErrNoWords.
func (m *Manager) Start(ctx context.Context, userID string, languages []string, size int) (*Session, error) {
	if old := m.detach(userID); old != nil {
		old.End()
	}

	s, err := start(ctx, m.deps, m.cfg, userID, languages, size, m.now)
	if err != nil {
		return s, err
	}

	m.mu.Lock()
	prev := m.sessions[userID]
	m.sessions[userID] = s
	m.mu.Unlock()

	// A concurrent Start for the same user lost the race.
	if prev != nil {
		prev.End()
	}
	return s, nil
}

// Current returns the user's active session, nil if none.
func (m *Manager) Current(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// Submit answers the current task of the user's session. The session is
// released once it ends.
func (m *Manager) Submit(ctx context.Context, userID, answer string) (*Result, error) {
	s := m.Current(userID)
	if s == nil {
		return nil, ErrNoSession
	}
	res, err := s.Submit(ctx, answer)
	if (res != nil && res.Ended) || errors.Is(err, ErrEnded) {
		m.release(userID, s)
	}
	return res, err
}

// End ends the user's session and returns its summary, nil if the user has
// no session.
func (m *Manager) End(userID string) *Summary {
	s := m.detach(userID)
	if s == nil {
		return nil
	}
	return s.End()
}

// StartReaper schedules the idle check.
func (m *Manager) StartReaper() error {
	interval := m.cfg.ReapInterval
	if interval <= 0 {
		interval = time.Minute
	}
	if _, err := m.scheduler.Every(interval).Do(m.ReapIdle); err != nil {
		return fmt.Errorf("schedule session reaper: %w", err)
	}
	m.scheduler.StartAsync()
	return nil
}

// ReapIdle ends every session idle for longer than IdleTimeout and returns
// how many were ended.
func (m *Manager) ReapIdle() int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	var idle []*Session
	m.mu.Lock()
	for userID, s := range m.sessions {
		if s.LastActivity().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, userID)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.End()
		log.Printf("session: ended idle session %s of user %s", s.ID, s.UserID)
	}
	return len(idle)
}

// Close stops the reaper and ends all sessions.
func (m *Manager) Close() {
	m.scheduler.Stop()

	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.End()
	}
}

// Active returns the number of active sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) detach(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[userID]
	delete(m.sessions, userID)
	return s
}

// release forgets s if it is still the user's session.
func (m *Manager) release(userID string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[userID] == s {
		delete(m.sessions, userID)
	}
}
