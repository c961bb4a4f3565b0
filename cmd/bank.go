package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/question"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage the question bank",
}

var bankLoadCmd = &cobra.Command{
	Use:   "load <file.json>...",
	Short: "Validate question bank files and load them into the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		banks := make([]*question.Bank, 0, len(args))
		for _, path := range args {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read bank: %w", err)
			}
			b, err := question.ParseBank(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d topics, %d questions\n", path, len(b.Topics), len(b.Questions))
			banks = append(banks, b)
		}
		if dryRun {
			return nil
		}

		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		for i, b := range banks {
			if err := rt.repo.UpsertBank(cmdContext(cmd), b); err != nil {
				return fmt.Errorf("load %s: %w", args[i], err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d bank file(s)\n", len(banks))
		return nil
	},
}

var bankTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List loaded topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		topics, err := rt.repo.FetchTopics(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("fetch topics: %w", err)
		}
		w := cmd.OutOrStdout()
		if len(topics) == 0 {
			fmt.Fprintln(w, "No topics loaded. Run: examprep bank load <file.json>")
			return nil
		}
		for _, t := range topics {
			kind := "chapter"
			if !t.IsChapter() {
				kind = "general"
			}
			fmt.Fprintf(w, "%-20s  %-8s  %s\n", t.ID, kind, t.Name)
		}
		return nil
	},
}

func init() {
	bankLoadCmd.Flags().Bool("dry-run", false, "Validate the files without writing to the database")

	bankCmd.AddCommand(bankLoadCmd)
	bankCmd.AddCommand(bankTopicsCmd)
}
