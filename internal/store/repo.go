package store

import (
	"context"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

// Filter narrows a question fetch. Zero values match everything.
type Filter struct {
	// Chapters restricts to questions tagged with one of these chapters.
	Chapters []string

	// Source restricts to questions from a single bank source.
	Source string

	Difficulty question.Difficulty
}

// QuestionSource is read-only access to the question corpus. Questions come
// back in bank order.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, f Filter) ([]question.Question, error)
	FetchTopics(ctx context.Context) ([]question.Topic, error)
}

// BankWriter loads a validated bank into the corpus. Existing topics and
// questions with the same id are replaced.
type BankWriter interface {
	UpsertBank(ctx context.Context, b *question.Bank) error
}

// Update is a partial session update. Nil fields are left unchanged.
type Update struct {
	Totals    *exam.Totals
	EndTime   *time.Time
	TimeLimit *time.Duration
}

// SessionRepo persists sessions and their attempt ledgers.
type SessionRepo interface {
	// CreateSession stores a new session with its frozen question list.
	CreateSession(ctx context.Context, s *exam.Session) error

	// GetSession returns the session with its questions and attempts, or
	// exam.ErrNotFound.
	GetSession(ctx context.Context, id string) (*exam.Session, error)

	// ListSessions returns every session ordered by start time.
	ListSessions(ctx context.Context) ([]exam.Session, error)

	UpdateSession(ctx context.Context, id string, u Update) error

	// DeleteSession removes a session and all of its attempts.
	DeleteSession(ctx context.Context, id string) error

	// PersistAttempt appends a and stores totals as the session's new
	// aggregates in one transaction. An attempt whose natural key is
	// already stored is ignored.
	PersistAttempt(ctx context.Context, a exam.Attempt, totals exam.Totals) error

	// DeleteAttempt removes the attempt matching m and stores totals in
	// one transaction. Returns exam.ErrNotFound when nothing matched.
	DeleteAttempt(ctx context.Context, m exam.Matcher, totals exam.Totals) error

	// FinalizeSession appends the backfill rows, stores totals and sets the
	// end time in one transaction. Safe to retry.
	FinalizeSession(ctx context.Context, id string, backfill []exam.Attempt, totals exam.Totals, end time.Time) error
}

// Repository is the full persistence surface used by the application.
type Repository interface {
	QuestionSource
	BankWriter
	SessionRepo
	Close() error
}

// matchesFilter is shared by the in-memory store and tests.
func matchesFilter(q question.Question, f Filter) bool {
	if f.Source != "" && q.Source != f.Source {
		return false
	}
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if len(f.Chapters) == 0 {
		return true
	}
	for _, c := range f.Chapters {
		if q.Chapter == c {
			return true
		}
	}
	return false
}
