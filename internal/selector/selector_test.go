package selector

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lasty/internal/store"
)

var now = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

// fakeWords is a store.WordRepo over fixed due and other lists.
type fakeWords struct {
	store.WordRepo
	due, other []store.WordCard
	err        error
	cutoffs    []time.Time
}

func (f *fakeWords) DueWords(_ context.Context, _ string, _ []string, cutoff time.Time) ([]store.WordCard, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.due, f.err
}

func (f *fakeWords) OtherWords(_ context.Context, _ string, _ []string, cutoff time.Time) ([]store.WordCard, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.other, nil
}

func cards(prefix string, n int) []store.WordCard {
	out := make([]store.WordCard, n)
	for i := range out {
		out[i] = store.WordCard{ID: fmt.Sprintf("%s-%d", prefix, i), TargetText: fmt.Sprintf("%s%d", prefix, i)}
	}
	return out
}

func newTestSelector(repo store.WordRepo, seed uint64) *Selector {
	s := New(repo)
	s.now = func() time.Time { return now }
	s.newRand = func() *rand.Rand { return rand.New(rand.NewPCG(seed, seed+1)) }
	return s
}

func ids(cs []store.WordCard) map[string]bool {
	m := make(map[string]bool, len(cs))
	for _, c := range cs {
		m[c.ID] = true
	}
	return m
}

func TestSelect_AllDueWhenFewerThanSize(t *testing.T) {
	repo := &fakeWords{due: cards("due", 2), other: cards("other", 10)}
	s := newTestSelector(repo, 7)

	got, err := s.SelectForSession(context.Background(), "u1", []string{"en"}, 5)
	require.NoError(t, err)

	require.Len(t, got, 5)
	set := ids(got)
	assert.Len(t, set, 5, "duplicate words selected")
	assert.True(t, set["due-0"])
	assert.True(t, set["due-1"])
}

func TestSelect_OnlyDueWhenEnough(t *testing.T) {
	repo := &fakeWords{due: cards("due", 8), other: cards("other", 10)}
	s := newTestSelector(repo, 3)

	got, err := s.SelectForSession(context.Background(), "u1", nil, 5)
	require.NoError(t, err)

	require.Len(t, got, 5)
	for _, c := range got {
		assert.Contains(t, c.ID, "due-")
	}
	assert.Len(t, repo.cutoffs, 1, "other words should not be loaded")
}

func TestSelect_ShortWhenNotEnoughWords(t *testing.T) {
	repo := &fakeWords{due: cards("due", 1), other: cards("other", 2)}
	s := newTestSelector(repo, 1)

	got, err := s.SelectForSession(context.Background(), "u1", nil, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSelect_NoWords(t *testing.T) {
	s := newTestSelector(&fakeWords{}, 1)

	got, err := s.SelectForSession(context.Background(), "u1", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_NonPositiveSize(t *testing.T) {
	repo := &fakeWords{due: cards("due", 3)}
	s := newTestSelector(repo, 1)

	got, err := s.SelectForSession(context.Background(), "u1", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, repo.cutoffs)
}

func TestSelect_DedupsAcrossReads(t *testing.T) {
	due := cards("w", 2)
	other := append(cards("w", 2), cards("x", 3)...)
	repo := &fakeWords{due: due, other: other}
	s := newTestSelector(repo, 11)

	got, err := s.SelectForSession(context.Background(), "u1", nil, 10)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Len(t, ids(got), 5)
}

func TestSelect_CutoffIsStartOfToday(t *testing.T) {
	repo := &fakeWords{due: cards("due", 1)}
	s := newTestSelector(repo, 1)

	_, err := s.SelectForSession(context.Background(), "u1", nil, 1)
	require.NoError(t, err)
	require.NotEmpty(t, repo.cutoffs)
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), repo.cutoffs[0])
}

func TestSelect_RepositoryFailure(t *testing.T) {
	repo := &fakeWords{err: fmt.Errorf("due words: %w", store.ErrUnavailable)}
	s := newTestSelector(repo, 1)

	_, err := s.SelectForSession(context.Background(), "u1", nil, 5)
	assert.True(t, errors.Is(err, store.ErrUnavailable))
}

func TestSelect_DueWordsNotAlwaysFirst(t *testing.T) {
	repo := &fakeWords{due: cards("due", 1), other: cards("other", 4)}

	positions := map[int]bool{}
	for seed := range uint64(50) {
		s := newTestSelector(repo, seed)
		got, err := s.SelectForSession(context.Background(), "u1", nil, 5)
		require.NoError(t, err)
		for i, c := range got {
			if c.ID == "due-0" {
				positions[i] = true
			}
		}
	}
	assert.Greater(t, len(positions), 1, "due word always at the same position")
}

func TestSelect_UniformOverDue(t *testing.T) {
	repo := &fakeWords{due: cards("due", 4)}
	counts := map[string]int{}
	const runs = 4000
	for seed := range uint64(runs) {
		s := newTestSelector(repo, seed)
		got, err := s.SelectForSession(context.Background(), "u1", nil, 1)
		require.NoError(t, err)
		counts[got[0].ID]++
	}
	for id, n := range counts {
		assert.InDelta(t, runs/4, n, runs/10, "word %s", id)
	}
}

func TestValidSize(t *testing.T) {
	for _, n := range []int{1, 3, 5, 10, 20} {
		assert.True(t, ValidSize(n))
	}
	for _, n := range []int{0, 2, 4, 100} {
		assert.False(t, ValidSize(n))
	}
}

func TestSelect_WithStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "selector.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()

	u := &store.UserProfile{Login: "anna", NativeLanguage: "ru", LearningLanguages: []string{"en"}}
	require.NoError(t, st.UserRepo().CreateUser(ctx, u))

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	for i := range 12 {
		due := today.AddDate(0, 0, 5)
		if i < 2 {
			due = today.AddDate(0, 0, -1)
		}
		require.NoError(t, st.WordRepo().AddWord(ctx, &store.WordCard{
			UserID:     u.ID,
			NativeText: fmt.Sprintf("слово%d", i),
			TargetText: fmt.Sprintf("word%d", i),
			Language:   "en",
			NextDue:    due,
		}))
	}

	s := New(st.WordRepo())
	s.now = func() time.Time { return today.Add(12 * time.Hour) }

	got, err := s.SelectForSession(ctx, u.ID, []string{"en"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)

	var dueCount int
	for _, c := range got {
		if c.NextDue.Before(today) {
			dueCount++
		}
	}
	assert.Equal(t, 2, dueCount)
}
