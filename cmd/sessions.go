package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/ui/components"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and maintain stored sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		sessions, err := rt.repo.ListSessions(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		openOnly, _ := cmd.Flags().GetBool("open")

		w := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(w, "No sessions found.")
			return nil
		}

		// Header.
		fmt.Fprintf(w, "%-36s  %-16s  %-12s  %-14s  %8s  %9s  %8s\n",
			"ID", "Started", "Mode", "Topic", "Duration", "Questions", "Accuracy")
		fmt.Fprintln(w, strings.Repeat("─", 115))

		shown := 0
		for _, s := range sessions {
			if openOnly && !s.Open() {
				continue
			}
			shown++
			duration := components.FormatClock(s.Duration())
			if s.Open() {
				duration = "open"
			}
			fmt.Fprintf(w, "%-36s  %-16s  %-12s  %-14s  %8s  %9d  %7.1f%%\n",
				s.ID,
				s.StartTime.Local().Format("2006-01-02 15:04"),
				s.Mode,
				s.TopicID,
				duration,
				s.Totals.TotalQuestions,
				s.Totals.Accuracy(),
			)
		}
		fmt.Fprintf(w, "\n%d sessions\n", shown)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>...",
	Short: "Delete sessions and all their attempts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmdContext(cmd)
		var errs []error
		for _, id := range args {
			if err := rt.engine.DeleteSession(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted", id)
		}
		return errors.Join(errs...)
	},
}

var sessionsRepairCmd = &cobra.Command{
	Use:   "repair [session-id]...",
	Short: "Recompute session totals from their attempt logs",
	Long:  "Recompute each session's totals from its attempts and store them when they drifted. With no ids every session is checked.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmdContext(cmd)
		ids := args
		if len(ids) == 0 {
			sessions, err := rt.repo.ListSessions(ctx)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			for _, s := range sessions {
				ids = append(ids, s.ID)
			}
		}

		repaired := 0
		var errs []error
		for _, id := range ids {
			changed, err := rt.engine.Repair(ctx, id)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				continue
			}
			if changed {
				repaired++
				fmt.Fprintln(cmd.OutOrStdout(), "Repaired", id)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d sessions repaired\n", repaired, len(ids))
		return errors.Join(errs...)
	},
}

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "Maintain individual attempts",
}

var attemptsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one attempt and roll it out of its session's totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		questionID, _ := cmd.Flags().GetString("question")
		ts, _ := cmd.Flags().GetString("ts")
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return fmt.Errorf("parse --ts: %w", err)
		}

		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		m := exam.Matcher{SessionID: sessionID, QuestionID: questionID, Timestamp: at}
		s, err := rt.engine.RemoveAttempt(cmdContext(cmd), m)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted attempt; session %s now has %d questions, %.1f%% accuracy\n",
			s.ID, s.Totals.TotalQuestions, s.Totals.Accuracy())
		return nil
	},
}

var attemptsListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List a session's attempts with the keys attempts delete needs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.repo.GetSession(cmdContext(cmd), args[0])
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-5s  %-14s  %-35s  %-7s  %-6s  %s\n",
			"Index", "Question", "Timestamp", "Correct", "Hint", "Selected")
		fmt.Fprintln(w, strings.Repeat("─", 90))
		for _, a := range s.Attempts {
			selected := "(none)"
			if a.Selected != nil {
				selected = *a.Selected
			}
			ok := "✓"
			if !a.Correct {
				ok = "✗"
			}
			hint := ""
			if a.HintUsed {
				hint = "yes"
			}
			fmt.Fprintf(w, "%-5d  %-14s  %-35s  %-7s  %-6s  %s\n",
				a.QuestionIndex, a.QuestionID, a.Timestamp.UTC().Format(time.RFC3339Nano), ok, hint, selected)
		}
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().Bool("open", false, "Only show sessions that were never finished")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsRepairCmd)

	attemptsDeleteCmd.Flags().String("session", "", "Session id")
	attemptsDeleteCmd.Flags().String("question", "", "Question id")
	attemptsDeleteCmd.Flags().String("ts", "", "Attempt timestamp (RFC 3339, as printed by attempts list)")
	_ = attemptsDeleteCmd.MarkFlagRequired("session")
	_ = attemptsDeleteCmd.MarkFlagRequired("question")
	_ = attemptsDeleteCmd.MarkFlagRequired("ts")

	attemptsCmd.AddCommand(attemptsListCmd)
	attemptsCmd.AddCommand(attemptsDeleteCmd)
}
