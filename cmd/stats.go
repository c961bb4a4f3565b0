package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		policy := analytics.DefaultPolicy()
		if v, _ := cmd.Flags().GetBool("completed-only"); v {
			policy.OpenInTotals = false
		}
		if v, _ := cmd.Flags().GetBool("open-in-trend"); v {
			policy.OpenInTrend = true
		}
		if tz, _ := cmd.Flags().GetString("tz"); tz != "" {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("load time zone: %w", err)
			}
			policy.Location = loc
		}

		sessions, err := rt.repo.ListSessions(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if policy.Topics, err = rt.repo.FetchTopics(cmdContext(cmd)); err != nil {
			return fmt.Errorf("fetch topics: %w", err)
		}
		report := analytics.Build(sessions, policy)

		if v, _ := cmd.Flags().GetBool("json"); v {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		top, _ := cmd.Flags().GetInt("top")
		printReport(cmd.OutOrStdout(), report, top)
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the full report as JSON")
	statsCmd.Flags().Bool("completed-only", false, "Leave unfinished sessions out of the totals")
	statsCmd.Flags().Bool("open-in-trend", false, "Count unfinished sessions in the trend and improvement rate")
	statsCmd.Flags().String("tz", "", "Time zone for grouping the trend by day (default: local)")
	statsCmd.Flags().Int("top", 10, "Number of most attempted questions to list")
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Heading.Render(title))
}

func printReport(w io.Writer, r analytics.Report, top int) {
	for _, in := range r.Insights {
		fmt.Fprintln(w, in)
	}
	if r.Overall.TotalQuestions == 0 {
		return
	}

	heading(w, "Overall")
	o := r.Overall
	fmt.Fprintf(w, "Sessions: %d (%d completed, %d open)\n", o.Sessions, r.CompletedSessions, r.OpenSessions)
	fmt.Fprintf(w, "Questions: %d  Correct: %d  Wrong: %d  Hints: %d\n",
		o.TotalQuestions, o.CorrectAnswers, o.WrongAnswers, o.HintsUsed)
	fmt.Fprintf(w, "Accuracy: %.1f%%  Avg time: %s  Improvement: %+.1f pts\n",
		o.Accuracy(), formatMs(o.AvgTimeMs()), r.Improvement)
	if r.Best != nil {
		fmt.Fprintf(w, "Best chapter: %s (%.0f%%)\n", r.Best.TopicID, r.Best.Accuracy())
	}
	if r.Worst != nil {
		fmt.Fprintf(w, "Weakest chapter: %s (%.0f%%)\n", r.Worst.TopicID, r.Worst.Accuracy())
	}

	if len(r.Chapters) > 0 {
		heading(w, "By topic")
		fmt.Fprintf(w, "%-24s  %8s  %9s  %8s  %8s\n", "Topic", "Sessions", "Questions", "Accuracy", "Avg")
		fmt.Fprintln(w, strings.Repeat("─", 65))
		for _, c := range r.Chapters {
			fmt.Fprintf(w, "%-24s  %8d  %9d  %7.1f%%  %8s\n",
				c.TopicID, c.Sessions, c.TotalQuestions, c.Accuracy(), formatMs(c.AvgTimeMs()))
		}
	}

	heading(w, "Time per answer")
	most := 0
	for _, b := range r.TimeBands {
		most = max(most, b.Count)
	}
	for _, b := range r.TimeBands {
		frac := 0.0
		if most > 0 {
			frac = float64(b.Count) / float64(most)
		}
		fmt.Fprintf(w, "%-7s  %s %d\n", b.Label, components.Bar(frac, 30), b.Count)
	}

	if len(r.Trend) > 0 {
		heading(w, "Trend")
		fmt.Fprintf(w, "%-10s  %8s  %9s  %8s\n", "Day", "Sessions", "Questions", "Accuracy")
		fmt.Fprintln(w, strings.Repeat("─", 42))
		for _, p := range r.Trend {
			fmt.Fprintf(w, "%-10s  %8d  %9d  %7.1f%%\n", p.Date, p.Sessions, p.Total, p.Accuracy)
		}
	}

	if top > 0 && len(r.Questions) > 0 {
		heading(w, "Most attempted questions")
		fmt.Fprintf(w, "%-14s  %-10s  %8s  %7s  %6s  %s\n", "Topic", "Question", "Attempts", "Correct", "Hints", "Text")
		fmt.Fprintln(w, strings.Repeat("─", 90))
		for i, q := range r.Questions {
			if i == top {
				break
			}
			text := q.Text
			if len(text) > 40 {
				text = text[:37] + "..."
			}
			fmt.Fprintf(w, "%-14s  %-10s  %8d  %6.0f%%  %5.0f%%  %s\n",
				q.TopicID, q.QuestionID, q.Attempts, q.CorrectRate, q.HintRate, text)
		}
	}

	if len(r.Recommendations) > 0 {
		heading(w, "Recommendations")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "%s %s\n", theme.Dim.Render(fmt.Sprintf("[%s]", rec.Priority)), rec.Message)
		}
	}
}

func formatMs(ms float64) string {
	return components.FormatClock(time.Duration(ms) * time.Millisecond)
}
