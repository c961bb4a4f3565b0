package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/config"
	"github.com/abhisek/examprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examprep",
	Short: "Timed practice exams in the terminal",
	Long: "examprep runs practice sessions over a multiple-choice question bank: " +
		"chapter drills, learn mode, timed tests, review and statistics.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "", "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database file or connection URL (overrides EXAMPREP_DB env var)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite or postgres (overrides EXAMPREP_DRIVER)")
	rootCmd.PersistentFlags().String("env-file", "", "Load settings from this .env file instead of ./.env")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(retakeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the configuration from the env file, the environment
// and finally the persistent flags, in increasing priority.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if p, _ := cmd.Flags().GetString("env-file"); p != "" {
		cfg, err = config.FromFile(p)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.Driver = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if cfg.DSN, err = resolveDBPath(cmd, cfg); err != nil {
		return config.Config{}, fmt.Errorf("resolve database path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database location using --db flag (highest
// priority), then EXAMPREP_DB, then the default XDG path. Only SQLite paths
// get their parent directory created.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	driver, err := store.ParseDriver(cfg.Driver)
	if err != nil {
		return "", err
	}
	dsn := cfg.DSN
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		dsn = p
	}
	if driver != store.DriverSQLite {
		return dsn, nil
	}
	if dsn == "" {
		return store.DefaultDBPath()
	}
	return dsn, store.EnsureDir(dsn)
}
