package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasty/internal/mistakes"
)

var mistakesCmd = &cobra.Command{
	Use:   "mistakes",
	Short: "Show the most frequent mistakes of a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		limit, _ := cmd.Flags().GetInt("limit")

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
		records, err := mistakes.NewAggregator(s.ErrorRepo()).History(ctx, u.ID, lang, limit)
		if err != nil {
			return fmt.Errorf("load mistakes: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No mistakes recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%6s  %-10s  %-44s  %s\n", "Count", "Lang", "Mistake", "Last seen")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, r := range records {
			fmt.Fprintf(out, "%6d  %-10s  %-44s  %s\n",
				r.Count, truncate(r.Language, 10), truncate(r.Description, 44),
				r.LastSeen.Local().Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	mistakesCmd.Flags().String("user", "", "Learner login (overrides LASTY_USER env var)")
	mistakesCmd.Flags().String("lang", "", "Only show mistakes in this language")
	mistakesCmd.Flags().IntP("limit", "n", 10, "Number of mistakes to show (0 = all)")
}
