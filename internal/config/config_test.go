package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
)

func lookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, PlanConfig{Count: 25, TimeLimit: 30 * time.Minute}, cfg.Plans[exam.ModeQuickTest])
	assert.Equal(t, PlanConfig{Count: 100, TimeLimit: 2 * time.Hour}, cfg.Plans[exam.ModeFullTest])
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := fromLookup(lookup(map[string]string{
		"EXAMPREP_DRIVER":               "postgres",
		"EXAMPREP_DB":                   "postgres://localhost/examprep",
		"EXAMPREP_LOG_LEVEL":            "debug",
		"EXAMPREP_QUICK_TEST_COUNT":     "10",
		"EXAMPREP_BANK_FULL_TIME_LIMIT": "45m",
		"EXAMPREP_SEED":                 "42",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "postgres://localhost/examprep", cfg.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Plans[exam.ModeQuickTest].Count)
	assert.Equal(t, 30*time.Minute, cfg.Plans[exam.ModeQuickTest].TimeLimit)
	assert.Equal(t, 45*time.Minute, cfg.Plans[exam.ModeBankFull].TimeLimit)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.NoError(t, cfg.Validate())
}

func TestFromLookup_BadValues(t *testing.T) {
	_, err := fromLookup(lookup(map[string]string{
		"EXAMPREP_FULL_TEST_COUNT": "many",
		"EXAMPREP_SEED":            "x",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXAMPREP_FULL_TEST_COUNT")
	assert.Contains(t, err.Error(), "EXAMPREP_SEED")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Driver = "postgres" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero count", func(c *Config) { c.Plans[exam.ModeQuickTest] = PlanConfig{TimeLimit: time.Minute} }},
		{"untimed mode", func(c *Config) { c.Plans[exam.ModeLearn] = PlanConfig{Count: 1, TimeLimit: time.Minute} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EXAMPREP_BANK_SOURCE=ncert\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("EXAMPREP_BANK_SOURCE") })

	cfg, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ncert", cfg.BankSource)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestValidateAcceptsEveryStoreAlias(t *testing.T) {
	for _, d := range []string{"sqlite3", "SQLite", "pg", "PGX", "postgresql"} {
		cfg := DefaultConfig()
		cfg.Driver = d
		cfg.DSN = "postgres://localhost/examprep"
		assert.NoError(t, cfg.Validate(), d)
	}
}
