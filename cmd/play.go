package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/exam"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a practice session",
	Long: "Open the terminal UI. With --mode the session starts right away; " +
		"chapterwise and learn also take --topic.",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		return runApp(cmd, mode, "")
	},
}

var retakeCmd = &cobra.Command{
	Use:   "retake <session-id>",
	Short: "Retake a past session with the same questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "", args[0])
	},
}

func init() {
	playCmd.Flags().String("mode", "", "Start this mode: "+modeList())
	playCmd.Flags().String("topic", "", "Topic id for chapterwise and learn sessions (e.g. chapter-03)")
}

func parseMode(s string) (exam.Mode, error) {
	m := exam.Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q (want one of %s)", s, modeList())
	}
	return m, nil
}

func modeList() string {
	modes := exam.AllModes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
