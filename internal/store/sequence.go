package store

import (
	"context"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number shared across
// all event types. Each event type lives in its own table, so per-table
// auto-increment IDs can't establish cross-type ordering (did the answer
// come before or after the LLM call that built its task?).
//
// The mutex serializes within the process; the transaction makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu      sync.Mutex
	drv     dialect.Driver
	dialect string
}

// newSequenceCounter seeds the counter row if it does not exist yet.
func newSequenceCounter(ctx context.Context, drv dialect.Driver) (*sequenceCounter, error) {
	q, args := entsql.Dialect(drv.Dialect()).
		Insert(tableSequence).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()

	var res entsql.Result
	if err := drv.Exec(ctx, q, args, &res); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{drv: drv, dialect: drv.Dialect()}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (seq int64, err error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	tx, err := sc.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	b := entsql.Dialect(sc.dialect)

	sel, selArgs := b.Select("next_val").
		From(entsql.Table(tableSequence)).
		Where(entsql.EQ("id", 1)).
		Query()
	var rows entsql.Rows
	if err = tx.Query(ctx, sel, selArgs, &rows); err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	if !rows.Next() {
		rows.Close()
		return 0, fmt.Errorf("read sequence: counter row missing")
	}
	if err = rows.Scan(&seq); err != nil {
		rows.Close()
		return 0, fmt.Errorf("scan sequence: %w", err)
	}
	rows.Close()

	upd, updArgs := b.Update(tableSequence).
		Set("next_val", seq+1).
		Where(entsql.EQ("id", 1)).
		Query()
	var res entsql.Result
	if err = tx.Exec(ctx, upd, updArgs, &res); err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence: %w", err)
	}
	return seq, nil
}
