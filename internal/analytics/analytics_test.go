package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

var day0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func session(id, topic string, start time.Time, correct, wrong int, done bool) exam.Session {
	s := exam.Session{ID: id, TopicID: topic, Mode: exam.ModeChapterwise, StartTime: start}
	for i := 0; i < correct+wrong; i++ {
		a := exam.Attempt{
			SessionID:     id,
			QuestionID:    topic + "-q" + string(rune('a'+i)),
			QuestionIndex: i,
			Correct:       i < correct,
			TimeSpentMs:   5000,
			Timestamp:     start.Add(time.Duration(i) * time.Second),
		}
		s.Attempts = append(s.Attempts, a)
		s.Totals = s.Totals.Add(a)
	}
	if done {
		end := start.Add(time.Hour)
		s.EndTime = &end
	}
	return s
}

func TestOverallAndByChapter(t *testing.T) {
	sessions := []exam.Session{
		session("s1", "chapter-02", day0, 3, 1, true),
		session("s2", "chapter-01", day0.Add(time.Hour), 1, 1, true),
		session("s3", "chapter-02", day0.Add(2*time.Hour), 2, 0, false),
	}

	o := Overall(sessions)
	assert.Equal(t, 3, o.Sessions)
	assert.Equal(t, 8, o.TotalQuestions)
	assert.Equal(t, 6, o.CorrectAnswers)
	assert.InDelta(t, 75.0, o.Accuracy(), 1e-9)
	assert.InDelta(t, 5000.0, o.AvgTimeMs(), 1e-9)

	chapters := ByChapter(sessions)
	require.Len(t, chapters, 2)
	assert.Equal(t, "chapter-01", chapters[0].TopicID)
	assert.Equal(t, "chapter-02", chapters[1].TopicID)
	assert.Equal(t, 2, chapters[1].Sessions)
	assert.Equal(t, 6, chapters[1].TotalQuestions)
	assert.InDelta(t, 50.0, chapters[0].Accuracy(), 1e-9)
}

func TestTimeDistribution(t *testing.T) {
	s := exam.Session{ID: "s1"}
	for _, ms := range []int64{0, 9999, 10000, 29999, 30000, 60000, 119999, 120000, 600000} {
		s.Attempts = append(s.Attempts, exam.Attempt{TimeSpentMs: ms})
	}
	bands := TimeDistribution([]exam.Session{s})
	var got []int
	for _, b := range bands {
		got = append(got, b.Count)
	}
	assert.Equal(t, []int{2, 2, 1, 2, 2}, got)
}

func TestTrendGroupsByLocalDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	sessions := []exam.Session{
		// 20:00 UTC on the 10th is the 11th in IST.
		session("late", "chapter-01", time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), 1, 1, true),
		session("early", "chapter-01", time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC), 2, 0, true),
		session("next", "chapter-01", time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC), 2, 0, true),
	}

	trend := Trend(sessions, loc)
	require.Len(t, trend, 2)
	assert.Equal(t, "2025-03-10", trend[0].Date)
	assert.Equal(t, 1, trend[0].Sessions)
	assert.InDelta(t, 100.0, trend[0].Accuracy, 1e-9)
	assert.Equal(t, "2025-03-11", trend[1].Date)
	assert.Equal(t, 2, trend[1].Sessions)
	assert.Equal(t, 3, trend[1].Correct)
	assert.Equal(t, 4, trend[1].Total)
}

func TestQuestionDifficultyOrdering(t *testing.T) {
	mk := func(qid string, correct bool) exam.Attempt {
		return exam.Attempt{QuestionID: qid, Correct: correct, TimeSpentMs: 1000}
	}
	s := exam.Session{ID: "s1", TopicID: "chapter-01", Attempts: []exam.Attempt{
		mk("b", true), mk("b", true),
		mk("a", true), mk("a", false),
		mk("c", false), mk("c", false),
		mk("d", true),
	}}
	other := exam.Session{ID: "s2", TopicID: "chapter-02", Attempts: []exam.Attempt{mk("b", false)}}

	stats := QuestionDifficulty([]exam.Session{s, other})
	var order []string
	for _, q := range stats {
		order = append(order, q.TopicID+"/"+q.QuestionID)
	}
	assert.Equal(t, []string{
		"chapter-01/c", "chapter-01/a", "chapter-01/b",
		"chapter-02/b", "chapter-01/d",
	}, order)
	assert.InDelta(t, 50.0, stats[1].CorrectRate, 1e-9)
	assert.InDelta(t, 1000.0, stats[1].AvgTimeMs, 1e-9)
}

func TestBestWorstNeedsMinimumQuestions(t *testing.T) {
	chapters := ByChapter([]exam.Session{
		session("s1", "chapter-01", day0, 4, 1, true),  // 80%
		session("s2", "chapter-02", day0, 1, 4, true),  // 20%
		session("s3", "chapter-03", day0, 4, 0, true),  // 100% but only 4
		session("s4", "quick-test", day0, 0, 10, true), // not a chapter
	})
	best, worst := BestWorst(chapters)
	require.NotNil(t, best)
	require.NotNil(t, worst)
	assert.Equal(t, "chapter-01", best.TopicID)
	assert.Equal(t, "chapter-02", worst.TopicID)

	best, worst = BestWorst(ByChapter([]exam.Session{session("s", "chapter-01", day0, 2, 2, true)}))
	assert.Nil(t, best)
	assert.Nil(t, worst)
}

func TestImprovementRate(t *testing.T) {
	var sessions []exam.Session
	// Given out of order on purpose.
	for i, correct := range []int{8, 4, 9, 5} {
		start := map[int]time.Time{0: day0.Add(2 * time.Hour), 1: day0, 2: day0.Add(3 * time.Hour), 3: day0.Add(time.Hour)}[i]
		sessions = append(sessions, session(string(rune('a'+i)), "chapter-01", start, correct, 10-correct, true))
	}
	// Accuracies in time order: 40, 50, 80, 90.
	assert.InDelta(t, 40.0, ImprovementRate(sessions), 1e-9)

	assert.Zero(t, ImprovementRate(sessions[:1]))
	assert.Zero(t, ImprovementRate(nil))

	odd := []exam.Session{
		session("x", "chapter-01", day0, 2, 8, true),
		session("y", "chapter-01", day0.Add(time.Hour), 4, 6, true),
		session("z", "chapter-01", day0.Add(2*time.Hour), 6, 4, true),
	}
	// 20 against mean(40, 60).
	assert.InDelta(t, 30.0, ImprovementRate(odd), 1e-9)
}

func TestRecommendations(t *testing.T) {
	chapters := ByChapter([]exam.Session{
		session("s1", "chapter-01", day0, 2, 8, true), // 20%: high
		session("s2", "chapter-02", day0, 3, 0, true), // 3 answered: medium
		session("s3", "chapter-03", day0, 7, 3, true), // 70%: low
		session("s4", "chapter-04", day0, 9, 1, true), // 90%: none
		session("s5", "chapter-05", day0, 3, 1, true), // 75% but only 4 answered
		session("s6", "chapter-06", day0, 5, 5, true), // 50%: high
	})
	recs := Recommendations(chapters)

	var got []string
	for _, r := range recs {
		got = append(got, r.TopicID+":"+string(r.Priority))
	}
	assert.Equal(t, []string{
		"chapter-01:high", "chapter-06:high",
		"chapter-05:medium", "chapter-02:medium",
		"chapter-03:low",
	}, got)

	assert.Equal(t, 20, recs[0].SuggestedQuestions)
	assert.Equal(t, KindLowAccuracy, recs[0].Kind)
	assert.Equal(t, 6, recs[2].SuggestedQuestions)
	assert.Equal(t, 7, recs[3].SuggestedQuestions)
	assert.Equal(t, 10, recs[4].SuggestedQuestions)

	exact := ByChapter([]exam.Session{session("s", "chapter-09", day0, 15, 5, true)})
	assert.Empty(t, Recommendations(exact))
}

func TestBuildPolicy(t *testing.T) {
	sessions := []exam.Session{
		session("a", "chapter-01", day0, 4, 6, true),
		session("b", "chapter-01", day0.Add(24*time.Hour), 9, 1, true),
		session("c", "chapter-01", day0.Add(48*time.Hour), 0, 3, false),
	}

	r := Build(sessions, Policy{OpenInTotals: true, Location: time.UTC})
	assert.Equal(t, 1, r.OpenSessions)
	assert.Equal(t, 2, r.CompletedSessions)
	assert.Equal(t, 23, r.Overall.TotalQuestions)
	assert.Len(t, r.Trend, 2)
	assert.InDelta(t, 50.0, r.Improvement, 1e-9)
	assert.NotEmpty(t, r.Insights)

	r = Build(sessions, Policy{OpenInTrend: true, Location: time.UTC})
	assert.Equal(t, 20, r.Overall.TotalQuestions)
	assert.Len(t, r.Trend, 3)
}

func TestBuildRecommendsUnpracticedChapters(t *testing.T) {
	sessions := []exam.Session{session("a", "chapter-01", day0, 9, 1, true)}
	p := Policy{OpenInTotals: true, Location: time.UTC, Topics: []question.Topic{
		{ID: "chapter-01", Name: "Cells"},
		{ID: "chapter-02", Name: "Genetics"},
		{ID: "appendix", Name: "Not a chapter"},
	}}

	r := Build(sessions, p)
	require.Len(t, r.Recommendations, 1)
	rec := r.Recommendations[0]
	assert.Equal(t, "chapter-02", rec.TopicID)
	assert.Equal(t, KindInsufficientPractice, rec.Kind)
	assert.Equal(t, PriorityMedium, rec.Priority)
	assert.Equal(t, 0, rec.Attempted)
	assert.Equal(t, 10, rec.SuggestedQuestions)
	assert.Contains(t, rec.Message, "No questions practiced in chapter-02")
	assert.Len(t, r.Chapters, 1, "unpracticed chapters stay out of the chapter table")

	r = Build(sessions, Policy{OpenInTotals: true, Location: time.UTC})
	assert.Empty(t, r.Recommendations)
}

func TestInsightsEmpty(t *testing.T) {
	r := Build(nil, DefaultPolicy())
	require.Len(t, r.Insights, 1)
	assert.Contains(t, r.Insights[0], "No questions answered")
	assert.Nil(t, r.Best)
	assert.Empty(t, r.Recommendations)
}
