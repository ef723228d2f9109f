package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lasty/internal/compose"
	"github.com/abhisek/lasty/internal/selector"
	"github.com/abhisek/lasty/internal/session"
	"github.com/abhisek/lasty/internal/store"
)

const quitCommand = ":q"

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Start an interactive training session",
	Long: `Start an interactive training session.

Words due for review come first; the rest of the session is filled with
other words. Type your answer and press Enter. For multiple-choice tasks
you may type the option number. Type :q to end the session early.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		size, _ := cmd.Flags().GetInt("size")
		if !selector.ValidSize(size) {
			return fmt.Errorf("invalid session size %d: choose one of %v", size, selector.Sizes)
		}
		langs, _ := cmd.Flags().GetString("lang")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		t, err := openTrainer(ctx, cmd)
		if err != nil {
			return err
		}
		defer t.Close()

		u, err := lookupUser(ctx, cmd, t.store)
		if err != nil {
			return err
		}
		languages := splitList(langs)
		if len(languages) == 0 {
			languages = u.LearningLanguages
		}

		if err := t.manager.StartReaper(); err != nil {
			return err
		}
		return train(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), t.manager, u.ID, languages, size)
	},
}

// train runs the read-answer-feedback loop until the session ends, the
// learner quits or ctx is cancelled.
func train(ctx context.Context, in io.Reader, out io.Writer, m *session.Manager, userID string, languages []string, size int) error {
	s, err := m.Start(ctx, userID, languages, size)
	if errors.Is(err, session.ErrNoWords) {
		fmt.Fprintln(out, "Nothing to train. Add words with 'lasty words add'.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	lines := readLines(in)
	printTask(out, s, s.Current())

	for {
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			printSummary(out, m.End(userID))
			return nil
		case l, ok := <-lines:
			if !ok {
				printSummary(out, m.End(userID))
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case quitCommand:
			printSummary(out, m.End(userID))
			return nil
		}

		res, err := m.Submit(ctx, userID, line)
		switch {
		case errors.Is(err, session.ErrAdvancePending):
			printResult(out, res)
			next, aerr := s.Advance(ctx)
			if aerr != nil {
				printSummary(out, m.End(userID))
				return nil
			}
			printTask(out, s, next)
			continue
		case errors.Is(err, store.ErrUnavailable):
			fmt.Fprintln(out, "Could not save your answer. Type it again to retry.")
			fmt.Fprint(out, "> ")
			continue
		case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrEnded):
			fmt.Fprintln(out, "The session has ended.")
			printSummary(out, s.Summary())
			return nil
		case err != nil:
			return err
		}

		printResult(out, res)
		if res.Ended {
			printSummary(out, res.Summary)
			return nil
		}
		printTask(out, s, res.Next)
	}
}

// readLines streams input lines so the loop can also watch for signals.
func readLines(in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

func printTask(out io.Writer, s *session.Session, task *compose.Task) {
	if task == nil {
		return
	}
	pos, total := s.Position()
	fmt.Fprintf(out, "\n[%d/%d] %s\n", pos, total, task.Prompt)
	if task.Sentence != "" {
		fmt.Fprintf(out, "  %s\n", task.Sentence)
	}
	if task.Reference != "" {
		fmt.Fprintf(out, "  (%s)\n", task.Reference)
	}
	for i, opt := range task.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprint(out, "> ")
}

func printResult(out io.Writer, res *session.Result) {
	if res == nil {
		return
	}
	fmt.Fprintln(out, res.Message)
	if res.Verdict.ErrorDescription != "" {
		fmt.Fprintf(out, "  %s\n", res.Verdict.ErrorDescription)
	}
	if res.Verdict.Explanation != "" {
		fmt.Fprintf(out, "  %s\n", res.Verdict.Explanation)
	}
	fmt.Fprintf(out, "  Progress %d → %d · %s · next review %s\n",
		res.Transition.From.Progress, res.Progress, res.Stage,
		res.NextDue.Local().Format("2006-01-02"))
}

func printSummary(out io.Writer, sum *session.Summary) {
	if sum == nil {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Session summary")
	fmt.Fprintln(out, strings.Repeat("─", 40))
	fmt.Fprintf(out, "Words answered:  %d of %d\n", sum.Answered, sum.Words)
	fmt.Fprintf(out, "Correct:         %d\n", sum.Correct)
	fmt.Fprintf(out, "Accepted:        %d\n", sum.Accepted)
	fmt.Fprintf(out, "Incorrect:       %d\n", sum.Incorrect)
	if sum.Answered > 0 {
		fmt.Fprintf(out, "Accuracy:        %.0f%%\n", sum.Accuracy*100)
	}
	fmt.Fprintf(out, "Duration:        %s\n", sum.Duration.Round(time.Second))

	for _, r := range sum.Results {
		if !r.Answered {
			continue
		}
		fmt.Fprintf(out, "  %-18s %-18s %3d → %3d  %s\n",
			truncate(r.Native, 18), truncate(r.Target, 18), r.ProgressBefore, r.ProgressAfter, r.Outcome)
	}
}

func init() {
	trainCmd.Flags().String("user", "", "Learner login (overrides LASTY_USER env var)")
	trainCmd.Flags().String("lang", "", "Comma-separated languages to train (default: all learned languages)")
	trainCmd.Flags().Int("size", selector.DefaultSize, "Number of words in the session (1, 3, 5, 10 or 20)")
}
