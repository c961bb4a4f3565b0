// Package review rebuilds the per-question view of a finished session from
// its frozen question list and attempt ledger.
package review

import (
	"context"
	"fmt"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/store"
)

// Verdict is the outcome shown for one question.
type Verdict string

const (
	VerdictCorrect    Verdict = "correct"
	VerdictIncorrect  Verdict = "incorrect"
	VerdictUnanswered Verdict = "unanswered"
)

// Item is the review of one position in the session.
type Item struct {
	Index    int
	Question question.Question

	// Selected is the first answer given, nil when unanswered.
	Selected *string
	Verdict  Verdict

	// Retries counts further answers to the same position.
	Retries int

	HintUsed          bool
	ExplanationViewed bool
	TimeSpentMs       int64
}

// Review is the reconstructed session.
type Review struct {
	SessionID string
	Items     []Item

	// Approximate is true when the question list was re-derived from the
	// current corpus because the session had no frozen list. Questions may
	// differ from what the learner saw.
	Approximate bool

	// Mismatched counts attempts whose question id disagrees with the
	// question at their index; they are ignored.
	Mismatched int
}

// Options configures Build.
type Options struct {
	// Fallback supplies questions for sessions without a frozen list.
	Fallback store.QuestionSource
}

// Build reconstructs the review of s. Attempts are matched to questions
// by their stored index; attempts without one are aligned by position in
// the order they were recorded.
func Build(ctx context.Context, s *exam.Session, opts Options) (*Review, error) {
	rev := &Review{SessionID: s.ID}

	questions := s.Questions
	if len(questions) == 0 {
		if opts.Fallback == nil {
			return rev, nil
		}
		qs, err := rederive(ctx, s, opts.Fallback)
		if err != nil {
			return nil, fmt.Errorf("rebuild question list: %w", err)
		}
		questions = qs
		rev.Approximate = true
	}

	rev.Items = make([]Item, len(questions))
	for i, q := range questions {
		rev.Items[i] = Item{Index: i, Question: q, Verdict: VerdictUnanswered}
	}
	seen := make([]bool, len(questions))

	apply := func(i int, a exam.Attempt) {
		it := &rev.Items[i]
		if seen[i] {
			it.Retries++
			return
		}
		seen[i] = true
		it.HintUsed = a.HintUsed
		it.ExplanationViewed = a.ExplanationViewed
		it.TimeSpentMs = a.TimeSpentMs
		switch {
		case a.Selected == nil:
			it.Verdict = VerdictUnanswered
		case a.Correct:
			it.Selected = a.Selected
			it.Verdict = VerdictCorrect
		default:
			it.Selected = a.Selected
			it.Verdict = VerdictIncorrect
		}
	}

	next, last := 0, -1
	for _, a := range s.Attempts {
		i := a.QuestionIndex
		if i < 0 || i >= len(questions) {
			// Positional fallback. A repeat of the previous question is a
			// retry; anything else takes the next position without an
			// attempt.
			if last >= 0 && questions[last].ID == a.QuestionID {
				i = last
			} else {
				for next < len(questions) && seen[next] {
					next++
				}
				if next >= len(questions) {
					rev.Mismatched++
					continue
				}
				i = next
			}
		}
		last = i
		if !rev.Approximate && questions[i].ID != a.QuestionID {
			rev.Mismatched++
			continue
		}
		apply(i, a)
	}
	return rev, nil
}

// Counts tallies the verdicts.
func (r *Review) Counts() (correct, incorrect, unanswered int) {
	for _, it := range r.Items {
		switch it.Verdict {
		case VerdictCorrect:
			correct++
		case VerdictIncorrect:
			incorrect++
		default:
			unanswered++
		}
	}
	return correct, incorrect, unanswered
}

func rederive(ctx context.Context, s *exam.Session, src store.QuestionSource) ([]question.Question, error) {
	var f store.Filter
	switch s.Mode {
	case exam.ModeChapterwise, exam.ModeLearn:
		f.Chapters = []string{s.TopicID}
	case exam.ModeBankQuick, exam.ModeBankFull:
		if s.TopicID != string(s.Mode) {
			f.Source = s.TopicID
		}
	default:
		if s.TopicID != "" && s.TopicID != string(s.Mode) {
			f.Chapters = []string{s.TopicID}
		}
	}
	qs, err := src.FetchQuestions(ctx, f)
	if err != nil {
		return nil, err
	}
	// A finished session's total bounds the list when the corpus grew.
	// Learn sessions record retries, so their total is not a length.
	if n := s.Totals.TotalQuestions; n > 0 && n < len(qs) && s.Mode != exam.ModeLearn {
		qs = qs[:n]
	}
	return qs, nil
}
