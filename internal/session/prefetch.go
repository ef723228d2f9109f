package session

import (
	"context"

	"github.com/abhisek/lasty/internal/compose"
	"github.com/abhisek/lasty/internal/store"
)

// prefetch is one background build of the next task. The result channel
// has room for exactly one task and done is closed when the goroutine
// exits, so a finished prefetch never blocks.
type prefetch struct {
	wordID string
	cancel context.CancelFunc
	result chan *compose.Task
	done   chan struct{}
}

// startPrefetch builds the task for card in the background. Only one
// prefetch may run per session; a second one panics.
//
// The prefetch only reads and computes. A task built after the session
// context was cancelled is dropped.
func (s *Session) startPrefetch(card store.WordCard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		panic(ErrPrefetchInFlight)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	p := &prefetch{
		wordID: card.ID,
		cancel: cancel,
		result: make(chan *compose.Task, 1),
		done:   make(chan struct{}),
	}
	s.pending = p
	history := s.history[card.Language]

	go func() {
		defer close(p.done)
		defer cancel()
		task := s.composer.Build(ctx, card, history)
		if ctx.Err() != nil {
			return
		}
		p.result <- task
	}()
}

// takePrefetch waits for the in-flight prefetch and returns its task. If
// ctx is done first, the prefetch keeps running and a later call can
// collect it.
func (s *Session) takePrefetch(ctx context.Context) (*compose.Task, error) {
	s.mu.Lock()
	p := s.pending
	s.mu.Unlock()
	if p == nil {
		return nil, ErrEnded
	}

	select {
	case <-p.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	if s.pending == p {
		s.pending = nil
	}
	s.mu.Unlock()

	select {
	case task := <-p.result:
		return task, nil
	default:
		// Cancelled before it finished.
		return nil, ErrEnded
	}
}

// stopPrefetch cancels the in-flight prefetch, waits for its goroutine to
// exit, and discards whatever it produced.
func (s *Session) stopPrefetch() {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()
	if p == nil {
		return
	}

	p.cancel()
	<-p.done
	select {
	case <-p.result:
	default:
	}
}

// prefetching reports whether a prefetch is in flight or holds an
// unconsumed task.
func (s *Session) prefetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}
