package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasty/internal/compose"
	"github.com/abhisek/lasty/internal/contentgen"
	"github.com/abhisek/lasty/internal/llm"
	"github.com/abhisek/lasty/internal/mistakes"
	"github.com/abhisek/lasty/internal/selector"
	"github.com/abhisek/lasty/internal/session"
	"github.com/abhisek/lasty/internal/store"
	"github.com/abhisek/lasty/internal/tasktype"
)

// trainer bundles the dependencies of a training run.
type trainer struct {
	store   *store.Store
	manager *session.Manager
}

// openTrainer opens the store and builds the session manager. Without a
// configured LLM provider the trainer runs offline: tasks are bare word
// pairs and answers are graded by rules.
func openTrainer(ctx context.Context, cmd *cobra.Command) (*trainer, error) {
	st, err := openStore(cmd)
	if err != nil {
		return nil, err
	}

	weights, err := tasktype.ConfigFromEnv()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("task weights: %w", err)
	}

	var content contentgen.Capability = contentgen.Offline{}
	if cfg, ok := llm.Resolve(); ok {
		provider, err := llm.NewProvider(ctx, cfg, st.EventRepo())
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider unavailable:", err)
		} else {
			content = contentgen.New(provider, contentgen.DefaultConfig())
		}
	}
	if _, offline := content.(contentgen.Offline); offline {
		fmt.Fprintln(os.Stderr, "No LLM provider configured; exercises will use plain word pairs.")
	}

	return &trainer{
		store:   st,
		manager: newManager(st, content, weights),
	}, nil
}

// newManager wires the session pipeline onto the store.
func newManager(st *store.Store, content contentgen.Capability, weights tasktype.Config) *session.Manager {
	deps := session.Deps{
		Users:    st.UserRepo(),
		Words:    st.WordRepo(),
		Events:   st.EventRepo(),
		Selector: selector.New(st.WordRepo()),
		Composer: compose.New(tasktype.NewWeighter(weights), content, compose.DefaultConfig()),
		Content:  content,
		Mistakes: mistakes.NewAggregator(st.ErrorRepo()),
	}
	return session.NewManager(deps, session.DefaultConfig())
}

func (t *trainer) Close() {
	t.manager.Close()
	t.store.Close()
}

// lookupUser resolves the --user flag to a profile.
func lookupUser(ctx context.Context, cmd *cobra.Command, st *store.Store) (*store.UserProfile, error) {
	login, _ := cmd.Flags().GetString("user")
	if login == "" {
		login = os.Getenv("LASTY_USER")
	}
	if login == "" {
		return nil, errors.New("no user given: pass --user or set LASTY_USER")
	}
	u, err := st.UserRepo().GetUserByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user %q not found; create it with 'lasty users add %s'", login, login)
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	return u, nil
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
