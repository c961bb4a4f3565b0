package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/review"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/theme"
)

var reviewCmd = &cobra.Command{
	Use:   "review <session-id>",
	Short: "Print the per-question review of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmdContext(cmd)
		s, err := rt.repo.GetSession(ctx, args[0])
		if errors.Is(err, exam.ErrNotFound) {
			return fmt.Errorf("no session with id %q", args[0])
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		rev, err := review.Build(ctx, s, review.Options{Fallback: rt.repo})
		if err != nil {
			return fmt.Errorf("build review: %w", err)
		}

		details, _ := cmd.Flags().GetBool("details")
		printReview(cmd.OutOrStdout(), session.BuildSummary(s), rev, details)
		return nil
	},
}

func init() {
	reviewCmd.Flags().Bool("details", false, "Include options, hints and explanations")
}

var verdictStyles = map[review.Verdict]lipgloss.Style{
	review.VerdictCorrect:    theme.Correct,
	review.VerdictIncorrect:  theme.Incorrect,
	review.VerdictUnanswered: theme.Unanswered,
}

func printReview(w io.Writer, sum session.Summary, rev *review.Review, details bool) {
	fmt.Fprintln(w, theme.Heading.Render(fmt.Sprintf("Session %s", sum.SessionID)))
	fmt.Fprintf(w, "Mode: %s  Topic: %s  Duration: %s\n", sum.Mode, sum.TopicID, components.FormatClock(sum.Duration))
	fmt.Fprintf(w, "Score: %d/%d (%.1f%%)  Hints: %d\n",
		sum.Totals.CorrectAnswers, sum.Totals.TotalQuestions, sum.Accuracy, sum.Totals.HintsUsed)
	if sum.RetakeOf != "" {
		fmt.Fprintf(w, "Retake of: %s\n", sum.RetakeOf)
	}
	if rev.Approximate {
		fmt.Fprintln(w, theme.Warning.Render("No saved question list; questions were matched against the current bank."))
	}
	if rev.Mismatched > 0 {
		fmt.Fprintln(w, theme.Warning.Render(fmt.Sprintf("%d answer(s) did not match their question and were skipped.", rev.Mismatched)))
	}

	correct, incorrect, unanswered := rev.Counts()
	fmt.Fprintf(w, "Correct: %d  Incorrect: %d  Unanswered: %d\n\n", correct, incorrect, unanswered)

	for _, it := range rev.Items {
		text := it.Question.Text
		if !details && len(text) > 60 {
			text = text[:57] + "..."
		}
		verdict := verdictStyles[it.Verdict].Render(fmt.Sprintf("%-10s", it.Verdict))
		fmt.Fprintf(w, "%3d. %s %s\n", it.Index+1, verdict, text)
		if !details {
			continue
		}

		for i, opt := range it.Question.Options {
			marker := " "
			switch {
			case opt == it.Question.CorrectAnswer:
				marker = "✓"
			case it.Selected != nil && opt == *it.Selected:
				marker = "✗"
			}
			fmt.Fprintf(w, "       %s %s) %s\n", marker, components.OptionLabel(i), opt)
		}
		var flags []string
		if it.Retries > 0 {
			flags = append(flags, fmt.Sprintf("%d retries", it.Retries))
		}
		if it.HintUsed {
			flags = append(flags, "hint used")
		}
		if it.ExplanationViewed {
			flags = append(flags, "explanation viewed")
		}
		if it.TimeSpentMs > 0 {
			flags = append(flags, formatMs(float64(it.TimeSpentMs)))
		}
		if len(flags) > 0 {
			fmt.Fprintln(w, theme.Dim.Render("       "+strings.Join(flags, " · ")))
		}
		if it.Question.Explanation != "" {
			fmt.Fprintln(w, theme.Dim.Render("       "+it.Question.Explanation))
		}
	}
}
