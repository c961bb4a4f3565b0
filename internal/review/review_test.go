package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/store"
)

var t0 = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func qs(ids ...string) []question.Question {
	out := make([]question.Question, len(ids))
	for i, id := range ids {
		out[i] = question.Question{
			ID: id, Text: id + "?", Options: []string{"a", "b"}, CorrectAnswer: "a",
			Hint: "hint " + id, Explanation: "because " + id, Chapter: "chapter-01",
		}
	}
	return out
}

func opt(s string) *string { return &s }

func att(qid string, idx int, sel *string, correct bool, n int) exam.Attempt {
	return exam.Attempt{
		SessionID: "s", QuestionID: qid, QuestionIndex: idx, Selected: sel, Correct: correct,
		TimeSpentMs: 1000, Timestamp: t0.Add(time.Duration(n) * time.Second),
	}
}

func TestBuild_MatchesByIndex(t *testing.T) {
	s := &exam.Session{
		ID:        "s",
		Questions: qs("q1", "q2", "q3"),
		// Recorded out of presentation order.
		Attempts: []exam.Attempt{
			att("q3", 2, opt("b"), false, 1),
			att("q1", 0, opt("a"), true, 2),
		},
	}

	rev, err := Build(context.Background(), s, Options{})
	require.NoError(t, err)
	require.Len(t, rev.Items, 3)

	assert.Equal(t, VerdictCorrect, rev.Items[0].Verdict)
	assert.Equal(t, "a", *rev.Items[0].Selected)
	assert.Equal(t, VerdictUnanswered, rev.Items[1].Verdict)
	assert.Nil(t, rev.Items[1].Selected)
	assert.Equal(t, VerdictIncorrect, rev.Items[2].Verdict)
	assert.Equal(t, "because q3", rev.Items[2].Question.Explanation)
	assert.Equal(t, "hint q3", rev.Items[2].Question.Hint)
	assert.False(t, rev.Approximate)

	c, i, u := rev.Counts()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{c, i, u})
}

func TestBuild_BackfillIsUnanswered(t *testing.T) {
	bf := att("q2", 1, nil, false, 9)
	bf.Backfilled = true
	s := &exam.Session{
		ID:        "s",
		Questions: qs("q1", "q2"),
		Attempts:  []exam.Attempt{att("q1", 0, opt("a"), true, 1), bf},
	}

	rev, err := Build(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.Equal(t, VerdictUnanswered, rev.Items[1].Verdict)
	assert.Nil(t, rev.Items[1].Selected)
}

func TestBuild_FirstAttemptDecides(t *testing.T) {
	s := &exam.Session{
		ID:        "s",
		Questions: qs("q1"),
		Attempts: []exam.Attempt{
			att("q1", 0, opt("b"), false, 1),
			att("q1", 0, opt("a"), true, 2),
		},
	}

	rev, err := Build(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.Equal(t, VerdictIncorrect, rev.Items[0].Verdict)
	assert.Equal(t, 1, rev.Items[0].Retries)
}

func TestBuild_PositionalFallbackForLegacyRows(t *testing.T) {
	s := &exam.Session{
		ID:        "s",
		Questions: qs("q1", "q2", "q3"),
		Attempts: []exam.Attempt{
			att("q1", -1, opt("a"), true, 1),
			att("q2", -1, opt("b"), false, 2),
			att("q2", -1, opt("a"), true, 3),
			att("q3", -1, opt("a"), true, 4),
		},
	}

	rev, err := Build(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.Equal(t, VerdictCorrect, rev.Items[0].Verdict)
	assert.Equal(t, VerdictIncorrect, rev.Items[1].Verdict)
	assert.Equal(t, 1, rev.Items[1].Retries)
	assert.Equal(t, VerdictCorrect, rev.Items[2].Verdict)
	assert.Zero(t, rev.Mismatched)
}

func TestBuild_IgnoresAttemptsForOtherQuestions(t *testing.T) {
	s := &exam.Session{
		ID:        "s",
		Questions: qs("q1", "q2"),
		Attempts:  []exam.Attempt{att("zz", 0, opt("a"), true, 1)},
	}

	rev, err := Build(context.Background(), s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Mismatched)
	assert.Equal(t, VerdictUnanswered, rev.Items[0].Verdict)
}

func TestBuild_FallbackIsApproximate(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.UpsertBank(context.Background(), &question.Bank{Questions: append(qs("q1", "q2"),
		question.Question{ID: "other", Options: []string{"a"}, CorrectAnswer: "a", Chapter: "chapter-02"})}))

	s := &exam.Session{
		ID:       "s",
		TopicID:  "chapter-01",
		Mode:     exam.ModeChapterwise,
		Attempts: []exam.Attempt{att("q1", 0, opt("a"), true, 1), att("q2", 1, opt("b"), false, 2)},
		Totals:   exam.Totals{TotalQuestions: 2, CorrectAnswers: 1, WrongAnswers: 1},
	}

	rev, err := Build(context.Background(), s, Options{Fallback: mem})
	require.NoError(t, err)
	assert.True(t, rev.Approximate)
	require.Len(t, rev.Items, 2)
	assert.Equal(t, VerdictCorrect, rev.Items[0].Verdict)
	assert.Equal(t, VerdictIncorrect, rev.Items[1].Verdict)
}

func TestBuild_NoListNoFallback(t *testing.T) {
	rev, err := Build(context.Background(), &exam.Session{ID: "s"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, rev.Items)
}
