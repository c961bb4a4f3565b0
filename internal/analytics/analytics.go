// Package analytics derives multi-session statistics from session records.
// Every function is pure: it reads the sessions it is given and nothing
// else.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

// MinChapterQuestions is the answered-question count a chapter needs before
// it is ranked as best or worst, and before accuracy-based recommendations
// apply to it.
const MinChapterQuestions = 5

// Stats are summed ledger totals.
type Stats struct {
	Sessions       int
	TotalQuestions int
	CorrectAnswers int
	WrongAnswers   int
	HintsUsed      int
	TotalTimeMs    int64
}

func (s *Stats) add(sess *exam.Session) {
	s.Sessions++
	s.TotalQuestions += sess.Totals.TotalQuestions
	s.CorrectAnswers += sess.Totals.CorrectAnswers
	s.WrongAnswers += sess.Totals.WrongAnswers
	s.HintsUsed += sess.Totals.HintsUsed
	s.TotalTimeMs += sess.Totals.TotalTimeMs
}

// Accuracy is correct/total as a percentage, 0 when nothing was answered.
func (s Stats) Accuracy() float64 {
	return percent(s.CorrectAnswers, s.TotalQuestions)
}

// AvgTimeMs is the mean time per question, 0 when nothing was answered.
func (s Stats) AvgTimeMs() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.TotalTimeMs) / float64(s.TotalQuestions)
}

// ChapterStats are the totals of every session on one topic.
type ChapterStats struct {
	TopicID string
	Stats
}

// Overall sums the totals of every session.
func Overall(sessions []exam.Session) Stats {
	var st Stats
	for i := range sessions {
		st.add(&sessions[i])
	}
	return st
}

// ByChapter groups session totals by topic, ordered by topic id.
func ByChapter(sessions []exam.Session) []ChapterStats {
	idx := make(map[string]int)
	var out []ChapterStats
	for i := range sessions {
		s := &sessions[i]
		j, ok := idx[s.TopicID]
		if !ok {
			j = len(out)
			idx[s.TopicID] = j
			out = append(out, ChapterStats{TopicID: s.TopicID})
		}
		out[j].add(s)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].TopicID < out[b].TopicID })
	return out
}

// Band is one bucket of the time-per-answer histogram. Max is exclusive;
// zero means unbounded.
type Band struct {
	Label string
	Min   time.Duration
	Max   time.Duration
	Count int
}

// Bands returns the empty histogram bands in display order.
func Bands() []Band {
	return []Band{
		{Label: "<10s", Max: 10 * time.Second},
		{Label: "10-30s", Min: 10 * time.Second, Max: 30 * time.Second},
		{Label: "30-60s", Min: 30 * time.Second, Max: time.Minute},
		{Label: "1-2m", Min: time.Minute, Max: 2 * time.Minute},
		{Label: ">=2m", Min: 2 * time.Minute},
	}
}

// TimeDistribution buckets the time spent on every attempt.
func TimeDistribution(sessions []exam.Session) []Band {
	bands := Bands()
	for _, s := range sessions {
		for _, a := range s.Attempts {
			d := time.Duration(a.TimeSpentMs) * time.Millisecond
			for i := range bands {
				if d >= bands[i].Min && (bands[i].Max == 0 || d < bands[i].Max) {
					bands[i].Count++
					break
				}
			}
		}
	}
	return bands
}

// DayPoint is one calendar day of the performance trend.
type DayPoint struct {
	Date     string // 2006-01-02 in the trend's location
	Sessions int
	Correct  int
	Total    int
	Accuracy float64
}

// Trend groups sessions by the calendar day they started on in loc and
// returns the days in chronological order. A nil loc means time.Local.
func Trend(sessions []exam.Session, loc *time.Location) []DayPoint {
	if loc == nil {
		loc = time.Local
	}
	byDay := make(map[string]*DayPoint)
	for _, s := range sessions {
		day := s.StartTime.In(loc).Format(time.DateOnly)
		p, ok := byDay[day]
		if !ok {
			p = &DayPoint{Date: day}
			byDay[day] = p
		}
		p.Sessions++
		p.Correct += s.Totals.CorrectAnswers
		p.Total += s.Totals.TotalQuestions
	}

	out := make([]DayPoint, 0, len(byDay))
	for _, p := range byDay {
		p.Accuracy = percent(p.Correct, p.Total)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// QuestionStat aggregates every attempt at one question within one topic.
type QuestionStat struct {
	TopicID     string
	QuestionID  string
	Text        string
	Attempts    int
	Correct     int
	CorrectRate float64 // percentage
	AvgTimeMs   float64
	HintRate    float64 // percentage
}

// QuestionDifficulty ranks questions. The ranking is by attempt count,
// most attempted first, which measures exposure rather than difficulty.
// Ties go to the lower correct rate, then the question id.
func QuestionDifficulty(sessions []exam.Session) []QuestionStat {
	type key struct{ topic, qid string }
	type acc struct {
		QuestionStat
		timeMs int64
		hints  int
	}
	groups := make(map[key]*acc)
	for _, s := range sessions {
		text := make(map[string]string, len(s.Questions))
		for _, q := range s.Questions {
			text[q.ID] = q.Text
		}
		for _, a := range s.Attempts {
			k := key{s.TopicID, a.QuestionID}
			g, ok := groups[k]
			if !ok {
				g = &acc{QuestionStat: QuestionStat{TopicID: s.TopicID, QuestionID: a.QuestionID}}
				groups[k] = g
			}
			if g.Text == "" {
				g.Text = text[a.QuestionID]
			}
			g.Attempts++
			if a.Correct {
				g.Correct++
			}
			if a.HintUsed {
				g.hints++
			}
			g.timeMs += a.TimeSpentMs
		}
	}

	out := make([]QuestionStat, 0, len(groups))
	for _, g := range groups {
		g.CorrectRate = percent(g.Correct, g.Attempts)
		g.HintRate = percent(g.hints, g.Attempts)
		g.AvgTimeMs = float64(g.timeMs) / float64(g.Attempts)
		out = append(out, g.QuestionStat)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Attempts != b.Attempts {
			return a.Attempts > b.Attempts
		}
		if a.CorrectRate != b.CorrectRate {
			return a.CorrectRate < b.CorrectRate
		}
		if a.TopicID != b.TopicID {
			return a.TopicID < b.TopicID
		}
		return a.QuestionID < b.QuestionID
	})
	return out
}

// BestWorst returns the chapters with the highest and lowest accuracy among
// those with at least MinChapterQuestions answered. Both are nil when no
// chapter qualifies. Ties keep the earlier chapter.
func BestWorst(chapters []ChapterStats) (best, worst *ChapterStats) {
	for i := range chapters {
		c := &chapters[i]
		if !isChapter(c.TopicID) || c.TotalQuestions < MinChapterQuestions {
			continue
		}
		if best == nil || c.Accuracy() > best.Accuracy() {
			best = c
		}
		if worst == nil || c.Accuracy() < worst.Accuracy() {
			worst = c
		}
	}
	return best, worst
}

// ImprovementRate compares mean per-session accuracy between the earlier
// and later half of the sessions, ordered by start time. With an odd count
// the later half holds the extra session. Sessions with nothing answered
// are ignored. Returns the signed difference in percentage points, 0 when
// fewer than two sessions count.
func ImprovementRate(sessions []exam.Session) float64 {
	var scored []exam.Session
	for _, s := range sessions {
		if s.Totals.TotalQuestions > 0 {
			scored = append(scored, s)
		}
	}
	if len(scored) < 2 {
		return 0
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].StartTime.Before(scored[j].StartTime) })

	half := len(scored) / 2
	return meanAccuracy(scored[half:]) - meanAccuracy(scored[:half])
}

func meanAccuracy(sessions []exam.Session) float64 {
	var sum float64
	for _, s := range sessions {
		sum += s.Totals.Accuracy()
	}
	return sum / float64(len(sessions))
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

func isChapter(topicID string) bool {
	return strings.HasPrefix(topicID, question.ChapterPrefix)
}
