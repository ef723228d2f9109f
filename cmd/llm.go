package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasty/internal/llm"
	"github.com/abhisek/lasty/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the language model calls made while training",
	Long: `Every sentence, translation, distractor and answer classification the
trainer asks a language model for is recorded. These commands list the
recorded calls, print one call in full, and sum up token usage and cost.`,
}

var llmEventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"list"},
	Short:   "List recent calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		if purpose != "" && !llm.IsPurpose(purpose) {
			return fmt.Errorf("unknown purpose %q (one of %s)", purpose, strings.Join(llm.Purposes, ", "))
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(context.Background(),
			store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No calls recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%5s  %-16s  %-12s  %-28s  %6s  %6s  %6s  %s\n",
			"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
		rule(out, 100)
		for _, e := range events {
			ok := "yes"
			if !e.Success {
				ok = "no"
			}
			fmt.Fprintf(out, "%5d  %-16s  %-12s  %-28s  %6d  %6d  %6d  %s\n",
				e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"), truncate(e.Purpose, 12),
				truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
		}
		return nil
	},
}

var llmShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one call with its full prompt and answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid event ID %q", args[0])
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(context.Background(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no call with ID %d", id)
		}

		out := cmd.OutOrStdout()
		fields := [][2]string{
			{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		}
		if e.ErrorMessage != "" {
			fields = append(fields, [2]string{"Error", e.ErrorMessage})
		}
		for _, f := range fields {
			fmt.Fprintf(out, "%-9s %s\n", f[0]+":", f[1])
		}

		for _, part := range [][2]string{{"PROMPT", e.RequestBody}, {"ANSWER", e.ResponseBody}} {
			fmt.Fprintln(out)
			fmt.Fprintln(out, part[0])
			rule(out, 60)
			body := strings.TrimRight(part[1], "\n")
			if body == "" {
				body = "(empty)"
			}
			fmt.Fprintln(out, body)
		}
		return nil
	},
}

var llmUsageCmd = &cobra.Command{
	Use:     "usage",
	Aliases: []string{"stats"},
	Short:   "Sum up token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No calls recorded yet.")
			return nil
		}

		fmt.Fprintf(out, "%-14s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg ms")
		rule(out, 56)
		for _, u := range byPurpose {
			fmt.Fprintf(out, "%-14s  %6d  %10d  %10d  %8d\n",
				truncate(u.Purpose, 14), u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		}

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-32s  %6s  %10s\n", "Model", "Calls", "Cost (USD)")
		rule(out, 52)
		var total float64
		var unpriced []string
		for _, u := range byModel {
			price := "?"
			if c := llm.LookupCost(u.Model); c != nil {
				usd := c.Cost(u.InputTokens, u.OutputTokens)
				total += usd
				price = formatCost(usd)
			} else {
				unpriced = append(unpriced, u.Model)
			}
			fmt.Fprintf(out, "%-32s  %6d  %10s\n", truncate(u.Model, 32), u.Calls, price)
		}
		rule(out, 52)
		fmt.Fprintf(out, "%-32s  %6s  %10s\n", "Total", "", formatCost(total))
		if len(unpriced) > 0 {
			fmt.Fprintf(out, "\nNo price known for %s; the total leaves them out.\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func rule(w io.Writer, width int) {
	fmt.Fprintln(w, strings.Repeat("─", width))
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmEventsCmd.Flags().IntP("limit", "n", 20, "Number of calls to list")
	llmEventsCmd.Flags().StringP("purpose", "p", "", "Only list calls for one purpose ("+strings.Join(llm.Purposes, ", ")+")")

	llmCmd.AddCommand(llmEventsCmd)
	llmCmd.AddCommand(llmShowCmd)
	llmCmd.AddCommand(llmUsageCmd)
}
