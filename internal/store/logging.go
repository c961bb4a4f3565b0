package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
)

// LoggingRepository is a decorator that logs every write and every failed
// read. Reads that succeed are logged at debug level.
type LoggingRepository struct {
	inner  Repository
	logger *slog.Logger
}

// WithLogging wraps a Repository with structured logging.
func WithLogging(r Repository, logger *slog.Logger) Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingRepository{inner: r, logger: logger.With("component", "store")}
}

func (l *LoggingRepository) done(ctx context.Context, op string, start time.Time, err error, attrs ...any) {
	attrs = append(attrs, "op", op, "latency_ms", time.Since(start).Milliseconds())
	if err != nil {
		l.logger.ErrorContext(ctx, "store operation failed", append(attrs, "error", err)...)
		return
	}
	l.logger.DebugContext(ctx, "store operation", attrs...)
}

func (l *LoggingRepository) FetchQuestions(ctx context.Context, f Filter) ([]question.Question, error) {
	start := time.Now()
	qs, err := l.inner.FetchQuestions(ctx, f)
	l.done(ctx, "fetch_questions", start, err, "chapters", f.Chapters, "source", f.Source, "count", len(qs))
	return qs, err
}

func (l *LoggingRepository) FetchTopics(ctx context.Context) ([]question.Topic, error) {
	start := time.Now()
	ts, err := l.inner.FetchTopics(ctx)
	l.done(ctx, "fetch_topics", start, err, "count", len(ts))
	return ts, err
}

func (l *LoggingRepository) UpsertBank(ctx context.Context, b *question.Bank) error {
	start := time.Now()
	err := l.inner.UpsertBank(ctx, b)
	l.done(ctx, "upsert_bank", start, err, "topics", len(b.Topics), "questions", len(b.Questions))
	return err
}

func (l *LoggingRepository) CreateSession(ctx context.Context, s *exam.Session) error {
	start := time.Now()
	err := l.inner.CreateSession(ctx, s)
	l.done(ctx, "create_session", start, err, "session_id", s.ID, "mode", s.Mode, "questions", len(s.Questions))
	return err
}

func (l *LoggingRepository) GetSession(ctx context.Context, id string) (*exam.Session, error) {
	start := time.Now()
	s, err := l.inner.GetSession(ctx, id)
	l.done(ctx, "get_session", start, err, "session_id", id)
	return s, err
}

func (l *LoggingRepository) ListSessions(ctx context.Context) ([]exam.Session, error) {
	start := time.Now()
	ss, err := l.inner.ListSessions(ctx)
	l.done(ctx, "list_sessions", start, err, "count", len(ss))
	return ss, err
}

func (l *LoggingRepository) UpdateSession(ctx context.Context, id string, u Update) error {
	start := time.Now()
	err := l.inner.UpdateSession(ctx, id, u)
	l.done(ctx, "update_session", start, err, "session_id", id)
	return err
}

func (l *LoggingRepository) DeleteSession(ctx context.Context, id string) error {
	start := time.Now()
	err := l.inner.DeleteSession(ctx, id)
	l.done(ctx, "delete_session", start, err, "session_id", id)
	return err
}

func (l *LoggingRepository) PersistAttempt(ctx context.Context, a exam.Attempt, totals exam.Totals) error {
	start := time.Now()
	err := l.inner.PersistAttempt(ctx, a, totals)
	l.done(ctx, "persist_attempt", start, err,
		"session_id", a.SessionID, "question_id", a.QuestionID, "correct", a.Correct, "total", totals.TotalQuestions)
	return err
}

func (l *LoggingRepository) DeleteAttempt(ctx context.Context, m exam.Matcher, totals exam.Totals) error {
	start := time.Now()
	err := l.inner.DeleteAttempt(ctx, m, totals)
	l.done(ctx, "delete_attempt", start, err, "session_id", m.SessionID, "question_id", m.QuestionID)
	return err
}

func (l *LoggingRepository) FinalizeSession(ctx context.Context, id string, backfill []exam.Attempt, totals exam.Totals, end time.Time) error {
	start := time.Now()
	err := l.inner.FinalizeSession(ctx, id, backfill, totals, end)
	l.done(ctx, "finalize_session", start, err, "session_id", id, "backfill", len(backfill), "total", totals.TotalQuestions)
	return err
}

func (l *LoggingRepository) Close() error {
	return l.inner.Close()
}
