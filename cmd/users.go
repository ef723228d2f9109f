package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasty/internal/store"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage learner profiles",
}

var usersAddCmd = &cobra.Command{
	Use:   "add <login>",
	Short: "Create a learner profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		native, _ := cmd.Flags().GetString("native")
		learn, _ := cmd.Flags().GetString("learn")
		topics, _ := cmd.Flags().GetString("topics")
		if native == "" {
			return errors.New("--native is required")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		if _, err := s.UserRepo().GetUserByLogin(ctx, args[0]); err == nil {
			return fmt.Errorf("user %q already exists", args[0])
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("look up user: %w", err)
		}

		u := &store.UserProfile{
			Login:             args[0],
			NativeLanguage:    native,
			LearningLanguages: splitList(learn),
			PreferredTopics:   splitList(topics),
		}
		if err := s.UserRepo().CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", u.Login, u.ID)
		return nil
	},
}

var usersShowCmd = &cobra.Command{
	Use:   "show <login>",
	Short: "Show a learner profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		u, err := s.UserRepo().GetUserByLogin(context.Background(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("look up user: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Login:     %s\n", u.Login)
		fmt.Fprintf(out, "ID:        %s\n", u.ID)
		fmt.Fprintf(out, "Native:    %s\n", u.NativeLanguage)
		fmt.Fprintf(out, "Learning:  %s\n", orNone(strings.Join(u.LearningLanguages, ", ")))
		fmt.Fprintf(out, "Topics:    %s\n", orNone(strings.Join(u.PreferredTopics, ", ")))
		fmt.Fprintf(out, "Created:   %s\n", u.CreatedAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func init() {
	usersAddCmd.Flags().String("native", "", "Native language of the learner (e.g. English)")
	usersAddCmd.Flags().String("learn", "", "Comma-separated languages being learned")
	usersAddCmd.Flags().String("topics", "", "Comma-separated preferred topics for example sentences")

	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersShowCmd)
}
