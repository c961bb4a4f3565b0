// Package exam holds the session and attempt records and the ledger that
// keeps a session's aggregate counters in sync with its attempt log.
package exam

import (
	"time"

	"github.com/abhisek/examprep/internal/question"
)

// Mode identifies how a session was built and timed.
type Mode string

const (
	ModeChapterwise Mode = "chapterwise"
	ModeLearn       Mode = "learn"
	ModeQuickTest   Mode = "quick-test"
	ModeFullTest    Mode = "full-test"
	ModeBankQuick   Mode = "bank-quick"
	ModeBankFull    Mode = "bank-full"
)

// AllModes returns every mode in menu order.
func AllModes() []Mode {
	return []Mode{ModeChapterwise, ModeLearn, ModeQuickTest, ModeFullTest, ModeBankQuick, ModeBankFull}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, k := range AllModes() {
		if m == k {
			return true
		}
	}
	return false
}

// Timed reports whether sessions in this mode run against a countdown.
func (m Mode) Timed() bool {
	switch m {
	case ModeQuickTest, ModeFullTest, ModeBankQuick, ModeBankFull:
		return true
	}
	return false
}

// Totals are the running aggregates of a session's ledger.
type Totals struct {
	TotalQuestions int   `json:"totalQuestions"`
	CorrectAnswers int   `json:"correctAnswers"`
	WrongAnswers   int   `json:"wrongAnswers"`
	HintsUsed      int   `json:"hintsUsed"`
	TotalTimeMs    int64 `json:"totalTime"`
}

// Add returns t with a's contribution added. t is not modified.
func (t Totals) Add(a Attempt) Totals {
	t.TotalQuestions++
	if a.Correct {
		t.CorrectAnswers++
	} else {
		t.WrongAnswers++
	}
	if a.HintUsed {
		t.HintsUsed++
	}
	t.TotalTimeMs += a.TimeSpentMs
	return t
}

// Sub returns t with a's contribution removed. t is not modified.
func (t Totals) Sub(a Attempt) Totals {
	t.TotalQuestions--
	if a.Correct {
		t.CorrectAnswers--
	} else {
		t.WrongAnswers--
	}
	if a.HintUsed {
		t.HintsUsed--
	}
	t.TotalTimeMs -= a.TimeSpentMs
	return t
}

// Accuracy returns correct/total as a percentage, 0 when nothing was answered.
func (t Totals) Accuracy() float64 {
	if t.TotalQuestions == 0 {
		return 0
	}
	return float64(t.CorrectAnswers) / float64(t.TotalQuestions) * 100
}

// Attempt is one recorded answer, or forced non-answer, within a session.
type Attempt struct {
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`

	// QuestionIndex is the position of the question in the session's
	// frozen list; -1 when unknown (rows written before it was stored).
	QuestionIndex int `json:"questionIndex"`

	// Selected is nil only for backfilled rows.
	Selected *string `json:"selected"`

	Correct           bool      `json:"correct"`
	TimeSpentMs       int64     `json:"timeSpent"`
	HintUsed          bool      `json:"hintUsed"`
	ExplanationViewed bool      `json:"explanationViewed"`
	Timestamp         time.Time `json:"timestamp"`

	// Backfilled marks rows synthesized for unanswered questions when the
	// session ended.
	Backfilled bool `json:"backfilled,omitempty"`
}

// Key returns the attempt's natural key.
func (a Attempt) Key() Matcher {
	return Matcher{SessionID: a.SessionID, QuestionID: a.QuestionID, Timestamp: a.Timestamp}
}

// Matcher identifies a single attempt by its natural key.
type Matcher struct {
	SessionID  string
	QuestionID string
	Timestamp  time.Time
}

// Matches reports whether a carries the matcher's key.
func (m Matcher) Matches(a Attempt) bool {
	return a.SessionID == m.SessionID &&
		a.QuestionID == m.QuestionID &&
		a.Timestamp.Equal(m.Timestamp)
}

// Session is one learner run through a mode. It owns its frozen question
// list and its attempt ledger.
type Session struct {
	ID        string        `json:"id"`
	TopicID   string        `json:"topic"`
	Mode      Mode          `json:"examMode,omitempty"`
	StartTime time.Time     `json:"startTime"`
	EndTime   *time.Time    `json:"endTime,omitempty"`
	TimeLimit time.Duration `json:"timeLimit,omitempty"`

	// RetakeOf is the id of the session whose question list was reused.
	RetakeOf string `json:"retakeOf,omitempty"`

	// Questions is the frozen, order-preserved list actually presented.
	Questions []question.Question `json:"questions"`

	Attempts []Attempt `json:"attempts"`
	Totals   Totals    `json:"totals"`
}

// Open reports whether the session has not been finalized. Abandoned
// sessions stay open forever; no separate flag distinguishes them.
func (s *Session) Open() bool {
	return s.EndTime == nil
}

// Duration returns EndTime - StartTime, or 0 while open.
func (s *Session) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Clone returns a deep copy of the session's slices and end time.
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = append([]question.Question(nil), s.Questions...)
	c.Attempts = append([]Attempt(nil), s.Attempts...)
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	return &c
}
