package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasty/internal/progress"
	"github.com/abhisek/lasty/internal/store"
)

const activityDays = 7

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
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

		repo := s.StatsRepo()
		now := time.Now()
		totals, err := repo.Totals(ctx, u.ID, lang, progress.Day(now))
		if err != nil {
			return fmt.Errorf("query totals: %w", err)
		}
		counts, err := repo.ProgressDistribution(ctx, u.ID, lang)
		if err != nil {
			return fmt.Errorf("query progress: %w", err)
		}
		activity, err := repo.RecentActivity(ctx, u.ID, progress.Day(now).AddDate(0, 0, -(activityDays-1)))
		if err != nil {
			return fmt.Errorf("query activity: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Vocabulary")
		fmt.Fprintln(out, strings.Repeat("─", 48))
		fmt.Fprintf(out, "Words:          %d\n", totals.Total)
		fmt.Fprintf(out, "Due today:      %d\n", totals.Ready)
		fmt.Fprintf(out, "Mastered:       %d\n", totals.Mastered)
		fmt.Fprintf(out, "Avg progress:   %.1f\n", totals.AvgProgress)

		fmt.Fprintln(out)
		fmt.Fprintln(out, "By stage")
		fmt.Fprintln(out, strings.Repeat("─", 48))
		for _, b := range progress.Bands {
			fmt.Fprintf(out, "%-26s %3d-%-3d  %5d\n", b.Stage, b.Min, b.Max, wordsInBand(counts, b))
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "Last %d days\n", activityDays)
		fmt.Fprintln(out, strings.Repeat("─", 48))
		if len(activity) == 0 {
			fmt.Fprintln(out, "No answers yet.")
			return nil
		}
		for _, d := range activity {
			fmt.Fprintf(out, "%s  %4d answered  %4d correct\n",
				d.Day.Format("Mon 2006-01-02"), d.Answered, d.Correct)
		}
		return nil
	},
}

func wordsInBand(counts []store.ProgressCount, b progress.Band) int {
	n := 0
	for _, c := range counts {
		if c.Progress >= b.Min && c.Progress <= b.Max {
			n += c.Words
		}
	}
	return n
}

func init() {
	statsCmd.Flags().String("user", "", "Learner login (overrides LASTY_USER env var)")
	statsCmd.Flags().String("lang", "", "Only count words of this language")
}
