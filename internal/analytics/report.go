package analytics

import (
	"fmt"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

// Policy decides which aggregates count sessions that were never
// finalized. Such sessions may be in progress or abandoned.
type Policy struct {
	// OpenInTotals includes open sessions in the overall, chapter, time
	// distribution and question aggregates.
	OpenInTotals bool

	// OpenInTrend includes open sessions in the trend and improvement rate.
	OpenInTrend bool

	// Location is the time zone for calendar days. Nil means time.Local.
	Location *time.Location

	// Topics is the bank's topic list. Chapters in it without any session
	// are recommended as unpracticed. Nil limits recommendations to the
	// chapters found in sessions.
	Topics []question.Topic
}

// DefaultPolicy counts open sessions in totals but keeps them out of the
// trend and improvement rate.
func DefaultPolicy() Policy {
	return Policy{OpenInTotals: true}
}

// Report bundles every aggregate.
type Report struct {
	Overall         Stats
	Chapters        []ChapterStats
	TimeBands       []Band
	Trend           []DayPoint
	Questions       []QuestionStat
	Best            *ChapterStats
	Worst           *ChapterStats
	Improvement     float64
	Recommendations []Recommendation
	Insights        []string

	OpenSessions      int
	CompletedSessions int
}

// Build computes the report for sessions under p.
func Build(sessions []exam.Session, p Policy) Report {
	var open, completed []exam.Session
	for _, s := range sessions {
		if s.Open() {
			open = append(open, s)
		} else {
			completed = append(completed, s)
		}
	}

	totals := completed
	if p.OpenInTotals {
		totals = sessions
	}
	trend := completed
	if p.OpenInTrend {
		trend = sessions
	}

	r := Report{
		Overall:           Overall(totals),
		Chapters:          ByChapter(totals),
		TimeBands:         TimeDistribution(totals),
		Questions:         QuestionDifficulty(totals),
		Trend:             Trend(trend, p.Location),
		Improvement:       ImprovementRate(trend),
		OpenSessions:      len(open),
		CompletedSessions: len(completed),
	}
	r.Best, r.Worst = BestWorst(r.Chapters)
	r.Recommendations = Recommendations(withUnpracticed(r.Chapters, p.Topics))
	r.Insights = Insights(r)
	return r
}

// withUnpracticed appends empty stats for topics that have no chapter entry
// yet.
func withUnpracticed(chapters []ChapterStats, topics []question.Topic) []ChapterStats {
	if len(topics) == 0 {
		return chapters
	}
	seen := make(map[string]bool, len(chapters))
	for _, c := range chapters {
		seen[c.TopicID] = true
	}
	out := append([]ChapterStats(nil), chapters...)
	for _, t := range topics {
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, ChapterStats{TopicID: t.ID})
		}
	}
	return out
}

// Insights turns a report into short plain-language observations.
func Insights(r Report) []string {
	var out []string
	if r.Overall.TotalQuestions == 0 {
		return []string{"No questions answered yet. Start a practice session to see your statistics."}
	}

	out = append(out, fmt.Sprintf("%.1f%% accuracy over %d questions in %d sessions.",
		r.Overall.Accuracy(), r.Overall.TotalQuestions, r.Overall.Sessions))

	switch {
	case r.Improvement >= 5:
		out = append(out, fmt.Sprintf("Improving: later sessions score %.1f points higher than earlier ones.", r.Improvement))
	case r.Improvement <= -5:
		out = append(out, fmt.Sprintf("Slipping: later sessions score %.1f points lower than earlier ones.", -r.Improvement))
	}

	if r.Best != nil && r.Worst != nil && r.Best.TopicID != r.Worst.TopicID {
		out = append(out, fmt.Sprintf("Strongest chapter %s (%.0f%%), weakest %s (%.0f%%).",
			r.Best.TopicID, r.Best.Accuracy(), r.Worst.TopicID, r.Worst.Accuracy()))
	}

	peak := -1
	for i, b := range r.TimeBands {
		if b.Count > 0 && (peak < 0 || b.Count > r.TimeBands[peak].Count) {
			peak = i
		}
	}
	if peak >= 0 {
		out = append(out, fmt.Sprintf("Most answers take %s.", r.TimeBands[peak].Label))
	}

	if hints := percent(r.Overall.HintsUsed, r.Overall.TotalQuestions); hints >= 25 {
		out = append(out, fmt.Sprintf("Hints were used on %.0f%% of questions.", hints))
	}
	if r.OpenSessions > 0 {
		out = append(out, fmt.Sprintf("%d session(s) were never finished.", r.OpenSessions))
	}
	return out
}
