package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// errorRepo implements ErrorRepo on the ent SQL builder.
type errorRepo struct {
	drv     *entsql.Driver
	dialect string
}

var errorColumns = []string{"id", "user_id", "language", "description", "occurrences", "first_seen", "last_seen"}

func keyPredicate(key ErrorKey) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("user_id", key.UserID),
		entsql.EQ("language", key.Language),
		entsql.EQ("description", key.Description),
	)
}

func (r *errorRepo) FindError(ctx context.Context, key ErrorKey) (*ErrorRecord, error) {
	recs, err := r.query(ctx, keyPredicate(key), 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// UpsertError relies on the unique (user_id, language, description) index:
// concurrent first occurrences of the same key collapse into one row.
func (r *errorRepo) UpsertError(ctx context.Context, key ErrorKey, seen time.Time) error {
	seen = dbTime(seen)
	q, args := entsql.Dialect(r.dialect).
		Insert(tableErrors).
		Columns("user_id", "language", "description", "occurrences", "first_seen", "last_seen").
		Values(key.UserID, key.Language, key.Description, 1, seen, seen).
		OnConflict(
			entsql.ConflictColumns("user_id", "language", "description"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("occurrences", 1)
				u.SetExcluded("last_seen")
			}),
		).
		Query()

	var res entsql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return unavailable("upsert error record", err)
	}
	return nil
}

func (r *errorRepo) ListErrors(ctx context.Context, userID, language string, limit int) ([]ErrorRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if language != "" {
		preds = append(preds, entsql.EQ("language", language))
	}
	return r.query(ctx, entsql.And(preds...), limit)
}

func (r *errorRepo) query(ctx context.Context, where *entsql.Predicate, limit int) ([]ErrorRecord, error) {
	sel := entsql.Dialect(r.dialect).
		Select(errorColumns...).
		From(entsql.Table(tableErrors)).
		Where(where).
		OrderBy(entsql.Desc("occurrences"), entsql.Desc("last_seen"), "id")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, unavailable("query error records", err)
	}
	defer rows.Close()

	var recs []ErrorRecord
	for rows.Next() {
		var rec ErrorRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Language, &rec.Description,
			&rec.Count, &rec.FirstSeen, &rec.LastSeen); err != nil {
			return nil, fmt.Errorf("scan error record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query error records", err)
	}
	return recs, nil
}
