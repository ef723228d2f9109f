package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasty/internal/progress"
	"github.com/abhisek/lasty/internal/store"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Manage the word pairs of a learner",
}

var wordsAddCmd = &cobra.Command{
	Use:   "add <native> <target>",
	Short: "Add a word pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		u, err := lookupUser(ctx, cmd, s)
		if err != nil {
			return err
		}
		if lang == "" {
			if len(u.LearningLanguages) != 1 {
				return errors.New("--lang is required when the user learns more than one language")
			}
			lang = u.LearningLanguages[0]
		}

		card := &store.WordCard{
			UserID:     u.ID,
			NativeText: strings.TrimSpace(args[0]),
			TargetText: strings.TrimSpace(args[1]),
			Language:   lang,
		}
		if err := s.WordRepo().AddWord(ctx, card); err != nil {
			return fmt.Errorf("add word: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s → %s (%s)\n", card.NativeText, card.TargetText, card.Language)
		return nil
	},
}

var wordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List word pairs with their learning progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		u, err := lookupUser(ctx, cmd, s)
		if err != nil {
			return err
		}
		cards, err := s.WordRepo().ListWords(ctx, u.ID, lang)
		if err != nil {
			return fmt.Errorf("list words: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(cards) == 0 {
			fmt.Fprintln(out, "No words yet. Add some with 'lasty words add'.")
			return nil
		}

		fmt.Fprintf(out, "%-20s  %-20s  %-8s  %5s  %-24s  %s\n",
			"Native", "Target", "Lang", "Prog", "Stage", "Next due")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		today := progress.Day(time.Now())
		for _, c := range cards {
			due := c.NextDue.Local().Format("2006-01-02")
			if !c.NextDue.After(today) {
				due += " (due)"
			}
			fmt.Fprintf(out, "%-20s  %-20s  %-8s  %5d  %-24s  %s\n",
				truncate(c.NativeText, 20), truncate(c.TargetText, 20), truncate(c.Language, 8),
				c.Progress, progress.StageFor(c.Progress), due)
		}
		return nil
	},
}

func init() {
	wordsCmd.PersistentFlags().String("user", "", "Learner login (overrides LASTY_USER env var)")
	wordsAddCmd.Flags().String("lang", "", "Language of the target word")
	wordsListCmd.Flags().String("lang", "", "Only list words of this language")

	wordsCmd.AddCommand(wordsAddCmd)
	wordsCmd.AddCommand(wordsListCmd)
}
