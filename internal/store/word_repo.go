package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// wordRepo implements WordRepo on the ent SQL builder.
type wordRepo struct {
	drv     *entsql.Driver
	dialect string
}

var wordColumns = []string{
	"id", "user_id", "native_text", "target_text", "language",
	"progress", "last_reviewed", "next_due", "created_at",
}

func (r *wordRepo) AddWord(ctx context.Context, card *WordCard) error {
	if card.UserID == "" || card.TargetText == "" || card.NativeText == "" {
		return fmt.Errorf("add word: user, native and target text are required")
	}
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	now := time.Now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	if card.NextDue.IsZero() {
		// New words are due right away.
		y, m, d := now.Date()
		card.NextDue = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	card.CreatedAt = dbTime(card.CreatedAt)
	card.NextDue = dbTime(card.NextDue)

	var lastReviewed any
	if !card.LastReviewed.IsZero() {
		card.LastReviewed = dbTime(card.LastReviewed)
		lastReviewed = card.LastReviewed
	}

	q, args := entsql.Dialect(r.dialect).
		Insert(tableWordCards).
		Columns(wordColumns...).
		Values(card.ID, card.UserID, card.NativeText, card.TargetText, card.Language,
			card.Progress, lastReviewed, card.NextDue, card.CreatedAt).
		Query()
	var res entsql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return unavailable("add word", err)
	}
	return nil
}

func (r *wordRepo) GetWord(ctx context.Context, id string) (*WordCard, error) {
	cards, err := r.query(ctx, entsql.EQ("id", id), 1)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("word %q: %w", id, ErrNotFound)
	}
	return &cards[0], nil
}

func (r *wordRepo) ListWords(ctx context.Context, userID, language string) ([]WordCard, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if language != "" {
		preds = append(preds, entsql.EQ("language", language))
	}
	return r.query(ctx, entsql.And(preds...), 0)
}

func (r *wordRepo) DueWords(ctx context.Context, userID string, languages []string, cutoff time.Time) ([]WordCard, error) {
	return r.query(ctx, r.scope(userID, languages, entsql.LTE("next_due", dbTime(cutoff))), 0)
}

func (r *wordRepo) OtherWords(ctx context.Context, userID string, languages []string, cutoff time.Time) ([]WordCard, error) {
	return r.query(ctx, r.scope(userID, languages, entsql.GT("next_due", dbTime(cutoff))), 0)
}

func (r *wordRepo) SaveWordProgress(ctx context.Context, wordID string, progress int, lastReviewed, nextDue time.Time) error {
	b := entsql.Dialect(r.dialect).
		Update(tableWordCards).
		Set("progress", progress).
		Set("next_due", dbTime(nextDue)).
		Where(entsql.EQ("id", wordID))
	if lastReviewed.IsZero() {
		b = b.SetNull("last_reviewed")
	} else {
		b = b.Set("last_reviewed", dbTime(lastReviewed))
	}
	q, args := b.Query()

	var res entsql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return unavailable("save word progress", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("save word progress", err)
	}
	if n == 0 {
		return fmt.Errorf("save word progress %q: %w", wordID, ErrNotFound)
	}
	return nil
}

// scope restricts a query to one user's words in the given languages.
func (r *wordRepo) scope(userID string, languages []string, extra *entsql.Predicate) *entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID), extra}
	if len(languages) > 0 {
		langs := make([]any, len(languages))
		for i, l := range languages {
			langs[i] = l
		}
		preds = append(preds, entsql.In("language", langs...))
	}
	return entsql.And(preds...)
}

func (r *wordRepo) query(ctx context.Context, where *entsql.Predicate, limit int) ([]WordCard, error) {
	sel := entsql.Dialect(r.dialect).
		Select(wordColumns...).
		From(entsql.Table(tableWordCards)).
		Where(where).
		OrderBy("created_at", "id")
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, unavailable("query words", err)
	}
	defer rows.Close()

	var cards []WordCard
	for rows.Next() {
		var (
			c            WordCard
			lastReviewed sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.NativeText, &c.TargetText, &c.Language,
			&c.Progress, &lastReviewed, &c.NextDue, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		if lastReviewed.Valid {
			c.LastReviewed = lastReviewed.Time
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("query words", err)
	}
	return cards, nil
}
