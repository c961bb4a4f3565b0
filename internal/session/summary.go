package session

import (
	"time"

	"github.com/abhisek/examprep/internal/exam"
)

// Summary holds the data displayed on the summary screen.
type Summary struct {
	SessionID string
	Mode      exam.Mode
	TopicID   string
	RetakeOf  string
	Reason    EndReason

	Duration time.Duration
	Totals   exam.Totals
	Accuracy float64

	// Answered counts questions with at least one real answer; Unanswered
	// counts backfilled questions.
	Answered   int
	Unanswered int

	// Persisted is false while a finalize is waiting for Flush.
	Persisted bool
}

// BuildSummary creates a Summary from a session record.
func BuildSummary(s *exam.Session) Summary {
	sum := Summary{
		SessionID: s.ID,
		Mode:      s.Mode,
		TopicID:   s.TopicID,
		RetakeOf:  s.RetakeOf,
		Duration:  s.Duration(),
		Totals:    s.Totals,
		Accuracy:  s.Totals.Accuracy(),
		Persisted: true,
	}
	seen := make(map[int]bool)
	for _, a := range s.Attempts {
		if a.Backfilled {
			sum.Unanswered++
			continue
		}
		if a.QuestionIndex >= 0 && !seen[a.QuestionIndex] {
			seen[a.QuestionIndex] = true
			sum.Answered++
		}
	}
	return sum
}
