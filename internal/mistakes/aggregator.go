// Package mistakes maintains the per-user error ledger.
package mistakes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/lasty/internal/store"
)

// Aggregator records mistakes in the ledger. Records for the same key are
// serialized in-process; the repository upsert keeps them to one row
// across processes.
type Aggregator struct {
	repo store.ErrorRepo
	now  func() time.Time

	mu    sync.Mutex
	locks map[store.ErrorKey]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewAggregator creates an Aggregator over repo.
func NewAggregator(repo store.ErrorRepo) *Aggregator {
	return &Aggregator{
		repo:  repo,
		now:   time.Now,
		locks: make(map[store.ErrorKey]*keyLock),
	}
}

// NormalizeDescription trims a description and collapses inner whitespace.
func NormalizeDescription(desc string) string {
	return strings.Join(strings.Fields(desc), " ")
}

// Record counts one occurrence of description for the user and language.
// Empty descriptions are ignored.
func (a *Aggregator) Record(ctx context.Context, userID, language, description string) error {
	description = NormalizeDescription(description)
	if description == "" {
		return nil
	}
	key := store.ErrorKey{UserID: userID, Language: language, Description: description}

	unlock := a.lock(key)
	defer unlock()

	if err := a.repo.UpsertError(ctx, key, a.now()); err != nil {
		return fmt.Errorf("record mistake: %w", err)
	}
	return nil
}

// Count returns how often the mistake was recorded, 0 if never.
func (a *Aggregator) Count(ctx context.Context, userID, language, description string) (int, error) {
	key := store.ErrorKey{UserID: userID, Language: language, Description: NormalizeDescription(description)}
	rec, err := a.repo.FindError(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("find mistake: %w", err)
	}
	if rec == nil {
		return 0, nil
	}
	return rec.Count, nil
}

// History returns the user's ledger, most frequent first. An empty
// language matches every language; limit 0 means no limit.
func (a *Aggregator) History(ctx context.Context, userID, language string, limit int) ([]store.ErrorRecord, error) {
	recs, err := a.repo.ListErrors(ctx, userID, language, limit)
	if err != nil {
		return nil, fmt.Errorf("list mistakes: %w", err)
	}
	return recs, nil
}

// lock acquires the per-key mutex and returns its release func. Entries
// are dropped once no caller holds or waits for them.
func (a *Aggregator) lock(key store.ErrorKey) func() {
	a.mu.Lock()
	l, ok := a.locks[key]
	if !ok {
		l = &keyLock{}
		a.locks[key] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, key)
		}
		a.mu.Unlock()
	}
}
