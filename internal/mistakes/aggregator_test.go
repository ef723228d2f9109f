package mistakes

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lasty/internal/store"
)

// fakeRepo is an in-memory store.ErrorRepo that notices overlapping
// upserts of the same key.
type fakeRepo struct {
	mu      sync.Mutex
	counts  map[store.ErrorKey]int
	active  map[store.ErrorKey]bool
	overlap atomic.Bool
	err     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{counts: map[store.ErrorKey]int{}, active: map[store.ErrorKey]bool{}}
}

func (f *fakeRepo) FindError(_ context.Context, key store.ErrorKey) (*store.ErrorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.counts[key]
	if !ok {
		return nil, f.err
	}
	return &store.ErrorRecord{ErrorKey: key, Count: n}, f.err
}

func (f *fakeRepo) UpsertError(_ context.Context, key store.ErrorKey, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	if f.active[key] {
		f.overlap.Store(true)
	}
	f.active[key] = true
	f.mu.Unlock()

	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.counts[key]++
	f.active[key] = false
	f.mu.Unlock()
	return nil
}

func (f *fakeRepo) ListErrors(_ context.Context, userID, language string, limit int) ([]store.ErrorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var recs []store.ErrorRecord
	for k, n := range f.counts {
		if k.UserID == userID && (language == "" || k.Language == language) {
			recs = append(recs, store.ErrorRecord{ErrorKey: k, Count: n})
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Count > recs[j].Count })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, f.err
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "Spelling: Letter substitution", NormalizeDescription("  Spelling:   Letter\tsubstitution \n"))
	assert.Equal(t, "", NormalizeDescription(" \t "))
}

func TestRecord_NormalizesAndCounts(t *testing.T) {
	repo := newFakeRepo()
	a := NewAggregator(repo)
	ctx := context.Background()

	require.NoError(t, a.Record(ctx, "u1", "de", "Grammar: Dative case"))
	require.NoError(t, a.Record(ctx, "u1", "de", "  Grammar:  Dative case "))

	n, err := a.Count(ctx, "u1", "de", "Grammar: Dative case")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = a.Count(ctx, "u1", "en", "Grammar: Dative case")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecord_IgnoresEmpty(t *testing.T) {
	repo := newFakeRepo()
	a := NewAggregator(repo)

	require.NoError(t, a.Record(context.Background(), "u1", "de", "   "))
	assert.Empty(t, repo.counts)
}

func TestRecord_SerializesSameKey(t *testing.T) {
	repo := newFakeRepo()
	a := NewAggregator(repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Record(ctx, "u1", "de", "Spelling: Letter substitution"))
		}()
	}
	wg.Wait()

	assert.False(t, repo.overlap.Load(), "upserts of one key overlapped")
	n, _ := a.Count(ctx, "u1", "de", "Spelling: Letter substitution")
	assert.Equal(t, 20, n)

	a.mu.Lock()
	assert.Empty(t, a.locks, "key locks leaked")
	a.mu.Unlock()
}

func TestRecord_RepositoryFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = store.ErrUnavailable
	a := NewAggregator(repo)

	err := a.Record(context.Background(), "u1", "de", "Vocabulary: Wrong word choice")
	assert.True(t, errors.Is(err, store.ErrUnavailable))
}

func TestHistory_MostFrequentFirst(t *testing.T) {
	repo := newFakeRepo()
	a := NewAggregator(repo)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, a.Record(ctx, "u1", "de", "Grammar: Word order"))
	}
	require.NoError(t, a.Record(ctx, "u1", "de", "Spelling: Letter substitution"))
	require.NoError(t, a.Record(ctx, "u2", "de", "Grammar: Word order"))

	recs, err := a.History(ctx, "u1", "de", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Grammar: Word order", recs[0].Description)
	assert.Equal(t, 3, recs[0].Count)
}

func TestAggregator_WithStore(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "mistakes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	a := NewAggregator(s.ErrorRepo())
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Record(ctx, "u1", "en", "Spelling: Letter substitution"))
		}()
	}
	wg.Wait()
	require.NoError(t, a.Record(ctx, "u1", "en", "Vocabulary: Wrong word choice"))

	recs, err := a.History(ctx, "u1", "en", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Spelling: Letter substitution", recs[0].Description)
	assert.Equal(t, 5, recs[0].Count)
	assert.Equal(t, 1, recs[1].Count)
}
