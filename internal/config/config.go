// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/examprep/internal/dbdriver"
	"github.com/abhisek/examprep/internal/exam"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "EXAMPREP_"

// Config holds all runtime configuration.
type Config struct {
	// Driver selects the SQL backend: "sqlite" or "postgres".
	Driver string

	// DSN is the database path (sqlite) or connection URL (postgres).
	// Empty means the default path is resolved at startup.
	DSN string

	Log LogConfig

	// Plans holds question counts and time limits per mode.
	Plans map[exam.Mode]PlanConfig

	// BankSource is the default source for the bank modes. Empty means
	// every source.
	BankSource string

	// Seed fixes the sampler's random source. Zero seeds from the clock.
	Seed int64
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error. Default: info
	Format string // text or json. Default: text

	// File receives log output. Empty means stderr for plain commands and
	// no output while the terminal UI owns the screen.
	File string
}

// PlanConfig is the tunable part of a mode plan.
type PlanConfig struct {
	Count     int
	TimeLimit time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Driver: "sqlite",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Plans: map[exam.Mode]PlanConfig{
			exam.ModeQuickTest: {Count: 25, TimeLimit: 30 * time.Minute},
			exam.ModeFullTest:  {Count: 100, TimeLimit: 120 * time.Minute},
			exam.ModeBankQuick: {Count: 25, TimeLimit: 30 * time.Minute},
			exam.ModeBankFull:  {Count: 100, TimeLimit: 120 * time.Minute},
		},
	}
}

// FromEnv loads .env from the working directory if present, then builds a
// Config from EXAMPREP_* variables, falling back to defaults for unset
// values. Variables already in the environment win over .env entries.
func FromEnv() (Config, error) {
	_ = godotenv.Load()
	return fromLookup(os.Getenv)
}

// FromFile is FromEnv with an explicit .env path. A missing file is an error.
func FromFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return fromLookup(os.Getenv)
}

func fromLookup(get func(string) string) (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	env := func(k string) string { return strings.TrimSpace(get(EnvPrefix + k)) }

	if v := env("DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := env("DB"); v != "" {
		cfg.DSN = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := env("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := env("BANK_SOURCE"); v != "" {
		cfg.BankSource = v
	}
	if v := env("SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED=%q: %w", EnvPrefix, v, err))
		}
		cfg.Seed = n
	}

	for mode, plan := range cfg.Plans {
		key := strings.ToUpper(strings.ReplaceAll(string(mode), "-", "_"))
		if v := env(key + "_COUNT"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s_COUNT=%q: %w", EnvPrefix, key, v, err))
			}
			plan.Count = n
		}
		if v := env(key + "_TIME_LIMIT"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s_TIME_LIMIT=%q: %w", EnvPrefix, key, v, err))
			}
			plan.TimeLimit = d
		}
		cfg.Plans[mode] = plan
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	driver, err := dbdriver.Parse(c.Driver)
	if err != nil {
		return err
	}
	if driver == dbdriver.Postgres && c.DSN == "" {
		return fmt.Errorf("%sDB is required for the postgres driver", EnvPrefix)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.Log.Format)
	}

	for mode, p := range c.Plans {
		if !mode.Timed() {
			return fmt.Errorf("mode %s does not take a question count or time limit", mode)
		}
		if p.Count <= 0 {
			return fmt.Errorf("mode %s: question count must be positive, got %d", mode, p.Count)
		}
		if p.TimeLimit <= 0 {
			return fmt.Errorf("mode %s: time limit must be positive, got %s", mode, p.TimeLimit)
		}
	}
	return nil
}
