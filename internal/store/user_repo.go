package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// userRepo implements UserRepo on the ent SQL builder.
type userRepo struct {
	drv     *entsql.Driver
	dialect string
}

var userColumns = []string{"id", "login", "native_language", "learning_languages", "preferred_topics", "created_at"}

func (r *userRepo) CreateUser(ctx context.Context, u *UserProfile) error {
	if u.Login == "" {
		return fmt.Errorf("create user: empty login")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = dbTime(u.CreatedAt)

	q, args := entsql.Dialect(r.dialect).
		Insert(tableUsers).
		Columns(userColumns...).
		Values(u.ID, u.Login, u.NativeLanguage,
			joinList(u.LearningLanguages), joinList(u.PreferredTopics), u.CreatedAt).
		Query()
	var res entsql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		return unavailable("create user", err)
	}
	return nil
}

func (r *userRepo) GetUser(ctx context.Context, id string) (*UserProfile, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*UserProfile, error) {
	return r.getBy(ctx, "login", login)
}

func (r *userRepo) getBy(ctx context.Context, column, value string) (*UserProfile, error) {
	q, args := entsql.Dialect(r.dialect).
		Select(userColumns...).
		From(entsql.Table(tableUsers)).
		Where(entsql.EQ(column, value)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, unavailable("query user", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, unavailable("query user", err)
		}
		return nil, fmt.Errorf("user %s=%q: %w", column, value, ErrNotFound)
	}

	var (
		u         UserProfile
		languages string
		topics    string
	)
	if err := rows.Scan(&u.ID, &u.Login, &u.NativeLanguage, &languages, &topics, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.LearningLanguages = splitList(languages)
	u.PreferredTopics = splitList(topics)
	return &u, nil
}

// joinList stores a list as comma-separated text.
func joinList(items []string) string {
	clean := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			clean = append(clean, it)
		}
	}
	return strings.Join(clean, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, it := range strings.Split(s, ",") {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
