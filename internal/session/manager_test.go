package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lasty/internal/contentgen"
)

func newTestManager(h *harness, cfg Config) *Manager {
	m := NewManager(h.deps, cfg)
	m.now = fixedNow
	return m
}

func TestManager_StartReplacesExistingSession(t *testing.T) {
	h := newHarness(contentgen.Offline{}, testCards(3)...)
	m := newTestManager(h, DefaultConfig())
	defer m.Close()

	first, err := m.Start(context.Background(), "u1", nil, 3)
	require.NoError(t, err)
	second, err := m.Start(context.Background(), "u1", nil, 3)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, PhaseEnded, first.Phase())
	assert.False(t, first.prefetching())
	assert.Same(t, second, m.Current("u1"))
	assert.Equal(t, 1, m.Active())
}

func TestManager_SubmitAndEnd(t *testing.T) {
	h := newHarness(contentgen.Offline{}, testCards(2)...)
	m := newTestManager(h, DefaultConfig())
	defer m.Close()

	_, err := m.Submit(context.Background(), "u1", "x")
	assert.ErrorIs(t, err, ErrNoSession)

	s, err := m.Start(context.Background(), "u1", nil, 2)
	require.NoError(t, err)

	res, err := m.Submit(context.Background(), "u1", s.Current().Answer)
	require.NoError(t, err)
	require.NotNil(t, res.Next)

	sum := m.End("u1")
	require.NotNil(t, sum)
	assert.Equal(t, 1, sum.Answered)
	assert.Nil(t, m.Current("u1"))
	assert.Nil(t, m.End("u1"))
}

func TestManager_ReleasesFinishedSession(t *testing.T) {
	h := newHarness(contentgen.Offline{}, testCards(1)...)
	m := newTestManager(h, DefaultConfig())
	defer m.Close()

	s, err := m.Start(context.Background(), "u1", nil, 1)
	require.NoError(t, err)

	res, err := m.Submit(context.Background(), "u1", s.Current().Answer)
	require.NoError(t, err)
	assert.True(t, res.Ended)
	assert.Nil(t, m.Current("u1"))
}

func TestManager_NoWords(t *testing.T) {
	h := newHarness(contentgen.Offline{})
	m := newTestManager(h, DefaultConfig())
	defer m.Close()

	s, err := m.Start(context.Background(), "u1", nil, 5)
	assert.ErrorIs(t, err, ErrNoWords)
	require.NotNil(t, s)
	assert.Equal(t, PhaseEnded, s.Phase())
	assert.Nil(t, m.Current("u1"))
}

func TestManager_ReapIdle(t *testing.T) {
	h := newHarness(contentgen.Offline{}, testCards(2)...)
	cfg := DefaultConfig()
	cfg.IdleTimeout = 10 * time.Minute
	m := NewManager(h.deps, cfg)
	defer m.Close()

	clock := testNow
	var mu sync.Mutex
	m.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	advance := func(d time.Duration) {
		mu.Lock()
		clock = clock.Add(d)
		mu.Unlock()
	}

	idle, err := m.Start(context.Background(), "idle", nil, 2)
	require.NoError(t, err)
	advance(8 * time.Minute)
	busy, err := m.Start(context.Background(), "busy", nil, 2)
	require.NoError(t, err)

	advance(5 * time.Minute)
	assert.Equal(t, 1, m.ReapIdle())

	assert.Equal(t, PhaseEnded, idle.Phase())
	assert.Nil(t, m.Current("idle"))
	assert.Equal(t, PhaseServing, busy.Phase())
	assert.Same(t, busy, m.Current("busy"))

	// Activity keeps a session alive.
	advance(9 * time.Minute)
	_, err = m.Submit(context.Background(), "busy", "falsch")
	require.NoError(t, err)
	advance(9 * time.Minute)
	assert.Equal(t, 0, m.ReapIdle())
	assert.Same(t, busy, m.Current("busy"))
}

func TestManager_ReaperRuns(t *testing.T) {
	h := newHarness(contentgen.Offline{}, testCards(2)...)
	cfg := DefaultConfig()
	cfg.IdleTimeout = time.Nanosecond
	cfg.ReapInterval = 10 * time.Millisecond
	m := NewManager(h.deps, cfg)
	defer m.Close()

	_, err := m.Start(context.Background(), "u1", nil, 2)
	require.NoError(t, err)
	require.NoError(t, m.StartReaper())

	assert.Eventually(t, func() bool { return m.Active() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestManager_CloseEndsAll(t *testing.T) {
	h := newHarness(contentgen.Offline{}, testCards(2)...)
	m := newTestManager(h, DefaultConfig())

	a, err := m.Start(context.Background(), "a", nil, 2)
	require.NoError(t, err)
	b, err := m.Start(context.Background(), "b", nil, 2)
	require.NoError(t, err)

	m.Close()
	assert.Equal(t, PhaseEnded, a.Phase())
	assert.Equal(t, PhaseEnded, b.Phase())
	assert.Equal(t, 0, m.Active())
}
