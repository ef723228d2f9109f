package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// statsRepo implements StatsRepo with hand-written SQL through sqlx.
type statsRepo struct {
	x *sqlx.DB
}

// languageFilter appends an optional language condition.
func languageFilter(query string, args []any, language string) (string, []any) {
	if language == "" {
		return query, args
	}
	return query + " AND language = ?", append(args, language)
}

func (r *statsRepo) ProgressDistribution(ctx context.Context, userID, language string) ([]ProgressCount, error) {
	query, args := languageFilter(`
		SELECT progress, COUNT(*) AS words
		FROM word_cards
		WHERE user_id = ?`, []any{userID}, language)
	query += " GROUP BY progress ORDER BY progress"

	var counts []ProgressCount
	if err := r.x.SelectContext(ctx, &counts, r.x.Rebind(query), args...); err != nil {
		return nil, unavailable("progress distribution", err)
	}
	return counts, nil
}

func (r *statsRepo) Totals(ctx context.Context, userID, language string, cutoff time.Time) (*WordTotals, error) {
	query, args := languageFilter(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN progress >= 100 THEN 1 ELSE 0 END), 0) AS mastered,
		       COALESCE(SUM(CASE WHEN next_due <= ? THEN 1 ELSE 0 END), 0) AS ready,
		       COALESCE(AVG(progress), 0) AS avg_progress
		FROM word_cards
		WHERE user_id = ?`, []any{dbTime(cutoff), userID}, language)

	var totals WordTotals
	if err := r.x.GetContext(ctx, &totals, r.x.Rebind(query), args...); err != nil {
		return nil, unavailable("word totals", err)
	}
	return &totals, nil
}

// RecentActivity groups answer events by day. Grouping happens in Go so
// the query stays portable between SQLite and PostgreSQL.
func (r *statsRepo) RecentActivity(ctx context.Context, userID string, since time.Time) ([]DailyActivity, error) {
	var rows []struct {
		Timestamp time.Time `db:"timestamp"`
		Outcome   string    `db:"outcome"`
	}
	err := r.x.SelectContext(ctx, &rows, r.x.Rebind(`
		SELECT timestamp, outcome
		FROM answer_events
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp`), userID, dbTime(since))
	if err != nil {
		return nil, unavailable("recent activity", err)
	}

	var days []DailyActivity
	for _, row := range rows {
		local := row.Timestamp.In(since.Location())
		y, m, d := local.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, since.Location())
		if len(days) == 0 || !days[len(days)-1].Day.Equal(day) {
			days = append(days, DailyActivity{Day: day})
		}
		cur := &days[len(days)-1]
		cur.Answered++
		if row.Outcome == "correct" {
			cur.Correct++
		}
	}
	return days, nil
}
