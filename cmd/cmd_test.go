package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/store"
)

const bankJSON = `{
	"topics": [{"id": "chapter-01", "name": "Cells"}],
	"questions": [
		{"id": "q1", "question": "Unit of life?", "options": ["Cell", "Atom"], "correct_answer": "Cell", "chapter": "chapter-01"},
		{"id": "q2", "question": "Powerhouse?", "options": ["Nucleus", "Mitochondria"], "correct_answer": "Mitochondria", "chapter": "chapter-01"}
	]
}`

var started = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

// resetFlags restores every flag in the command tree to its default so
// runs do not leak values into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", "examprep.db")
}

// seedSession stores a finished chapter-01 session with one right and one
// wrong answer.
func seedSession(t *testing.T, db string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.EnsureDir(db))
	st, err := store.Open(ctx, store.Options{Driver: store.DriverSQLite, DSN: db})
	require.NoError(t, err)
	defer st.Close()

	b, err := question.ParseBank([]byte(bankJSON))
	require.NoError(t, err)
	require.NoError(t, st.UpsertBank(ctx, b))

	s := &exam.Session{
		ID:        "s1",
		TopicID:   "chapter-01",
		Mode:      exam.ModeChapterwise,
		StartTime: started,
		Questions: b.Questions,
	}
	require.NoError(t, st.CreateSession(ctx, s))

	right, wrong := "Cell", "Nucleus"
	attempts := []exam.Attempt{
		{SessionID: "s1", QuestionID: "q1", QuestionIndex: 0, Selected: &right, Correct: true, TimeSpentMs: 4000, Timestamp: started.Add(time.Minute)},
		{SessionID: "s1", QuestionID: "q2", QuestionIndex: 1, Selected: &wrong, TimeSpentMs: 45000, HintUsed: true, Timestamp: started.Add(2 * time.Minute)},
	}
	var totals exam.Totals
	for _, a := range attempts {
		totals = totals.Add(a)
		require.NoError(t, st.PersistAttempt(ctx, a, totals))
	}
	require.NoError(t, st.FinalizeSession(ctx, "s1", nil, totals, started.Add(3*time.Minute)))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "examprep")
}

func TestBankLoadAndTopics(t *testing.T) {
	db := tempDB(t)
	file := filepath.Join(t.TempDir(), "bank.json")
	require.NoError(t, os.WriteFile(file, []byte(bankJSON), 0o644))

	out, err := run(t, "--db", db, "bank", "load", file)
	require.NoError(t, err)
	assert.Contains(t, out, "1 topics, 2 questions")
	assert.Contains(t, out, "Loaded 1 bank file(s)")

	out, err = run(t, "--db", db, "bank", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "chapter-01")
	assert.Contains(t, out, "Cells")
}

func TestBankLoadRejectsInvalidFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"topics": []}`), 0o644))

	_, err := run(t, "--db", tempDB(t), "bank", "load", "--dry-run", file)
	require.Error(t, err)
}

func TestEmptyDatabase(t *testing.T) {
	db := tempDB(t)

	out, err := run(t, "--db", db, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")

	out, err = run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "No questions answered yet")
}

func TestStatsJSON(t *testing.T) {
	db := tempDB(t)
	seedSession(t, db)

	out, err := run(t, "--db", db, "stats", "--json", "--tz", "UTC")
	require.NoError(t, err)

	var report struct {
		Overall struct {
			Sessions       int
			TotalQuestions int
			CorrectAnswers int
		}
		Trend []struct {
			Date string
		}
		CompletedSessions int
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Overall.Sessions)
	assert.Equal(t, 2, report.Overall.TotalQuestions)
	assert.Equal(t, 1, report.Overall.CorrectAnswers)
	assert.Equal(t, 1, report.CompletedSessions)
	require.Len(t, report.Trend, 1)
	assert.Equal(t, "2026-05-01", report.Trend[0].Date)
}

func TestStatsText(t *testing.T) {
	db := tempDB(t)
	seedSession(t, db)

	out, err := run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions: 1 (1 completed, 0 open)")
	assert.Contains(t, out, "chapter-01")
	assert.Contains(t, out, "Recommendations")
}

func TestSessionsListAndReview(t *testing.T) {
	db := tempDB(t)
	seedSession(t, db)

	out, err := run(t, "--db", db, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "1 sessions")

	out, err = run(t, "--db", db, "review", "s1", "--details")
	require.NoError(t, err)
	assert.Contains(t, out, "Score: 1/2")
	assert.Contains(t, out, "Correct: 1  Incorrect: 1  Unanswered: 0")
	assert.Contains(t, out, "hint used")

	_, err = run(t, "--db", db, "review", "missing")
	require.Error(t, err)
}

func TestAttemptsDeleteAndRepair(t *testing.T) {
	db := tempDB(t)
	seedSession(t, db)

	out, err := run(t, "--db", db, "attempts", "list", "s1")
	require.NoError(t, err)
	ts := started.Add(2 * time.Minute).Format(time.RFC3339Nano)
	assert.Contains(t, out, ts)

	out, err = run(t, "--db", db, "attempts", "delete", "--session", "s1", "--question", "q2", "--ts", ts)
	require.NoError(t, err)
	assert.Contains(t, out, "now has 1 questions, 100.0% accuracy")

	_, err = run(t, "--db", db, "attempts", "delete", "--session", "s1", "--question", "q2", "--ts", ts)
	require.Error(t, err)

	out, err = run(t, "--db", db, "sessions", "repair")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 1 sessions repaired")
}

func TestSessionsDelete(t *testing.T) {
	db := tempDB(t)
	seedSession(t, db)

	out, err := run(t, "--db", db, "sessions", "delete", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted s1")

	out, err = run(t, "--db", db, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found.")
}

func TestParseMode(t *testing.T) {
	m, err := parseMode(" Quick-Test ")
	require.NoError(t, err)
	assert.Equal(t, exam.ModeQuickTest, m)

	_, err = parseMode("speedrun")
	require.Error(t, err)
}

func TestUnknownDriver(t *testing.T) {
	_, err := run(t, "--driver", "oracle", "sessions", "list")
	require.Error(t, err)
}
