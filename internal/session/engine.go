// Package session runs exam sessions: it builds the frozen question list,
// drives the timer, records attempts through the repository and finalizes
// the ledger when a session ends.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/timer"
)

// Options configures an Engine.
type Options struct {
	Clock  timer.Clock
	Logger *slog.Logger

	// NewID generates session ids. Default: uuid.NewString.
	NewID func() string

	// AutoTick makes every runner own a timer.Loop that ticks its timer.
	// Leave false when the caller drives Tick itself, as the terminal UI
	// does.
	AutoTick     bool
	TickInterval time.Duration
}

// Engine creates session runners and performs ledger maintenance on stored
// sessions.
type Engine struct {
	repo    store.SessionRepo
	planner *Planner
	opts    Options
	logger  *slog.Logger
}

// StartOptions selects what a new session covers.
type StartOptions struct {
	Mode    exam.Mode
	TopicID string
}

// NewEngine creates an Engine.
func NewEngine(repo store.SessionRepo, planner *Planner, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = timer.SystemClock{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = timer.TickInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, planner: planner, opts: opts, logger: logger.With("component", "session")}
}

// Planner returns the engine's planner.
func (e *Engine) Planner() *Planner {
	return e.planner
}

// Start samples questions and returns a runner in StateCreated. Nothing is
// persisted until Activate. An empty pool returns exam.ErrEmptyPool.
func (e *Engine) Start(ctx context.Context, so StartOptions) (*Runner, error) {
	if !so.Mode.Valid() {
		return nil, fmt.Errorf("start session: unknown mode %q", so.Mode)
	}
	plan, err := e.planner.Plan(so.Mode)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	res, err := e.planner.Select(ctx, so.Mode, so.TopicID)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if res.Empty() {
		return nil, fmt.Errorf("start %s session: %w", so.Mode, exam.ErrEmptyPool)
	}
	if res.Partial {
		e.logger.WarnContext(ctx, "question pool smaller than requested",
			"mode", so.Mode, "topic", so.TopicID, "requested", res.Requested, "got", len(res.Questions))
	}

	topic := so.TopicID
	if topic == "" {
		topic = string(so.Mode)
	}
	s := &exam.Session{
		ID:        e.opts.NewID(),
		TopicID:   topic,
		Mode:      so.Mode,
		TimeLimit: plan.TimeLimit,
		Questions: res.Questions,
	}
	r := e.newRunner(plan, s)
	if res.Partial {
		r.requested = res.Requested
	}
	return r, nil
}

// Retake returns a runner over the question list of a stored session, in
// the same order, with a fresh id and an empty ledger. The stored session
// is not modified.
func (e *Engine) Retake(ctx context.Context, sessionID string) (*Runner, error) {
	prior, err := e.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retake %s: %w", sessionID, err)
	}
	if len(prior.Questions) == 0 {
		return nil, fmt.Errorf("retake %s: no frozen question list: %w", sessionID, exam.ErrEmptyPool)
	}
	plan, err := e.planner.Plan(prior.Mode)
	if err != nil {
		return nil, fmt.Errorf("retake %s: %w", sessionID, err)
	}
	if plan.Timed && prior.TimeLimit > 0 {
		plan.TimeLimit = prior.TimeLimit
	}

	s := &exam.Session{
		ID:        e.opts.NewID(),
		TopicID:   prior.TopicID,
		Mode:      prior.Mode,
		TimeLimit: plan.TimeLimit,
		RetakeOf:  prior.ID,
		Questions: append([]question.Question(nil), prior.Questions...),
	}
	return e.newRunner(plan, s), nil
}

// RemoveAttempt deletes one attempt from a stored session and rolls its
// contribution out of the totals in the same store transaction.
func (e *Engine) RemoveAttempt(ctx context.Context, m exam.Matcher) (*exam.Session, error) {
	s, err := e.repo.GetSession(ctx, m.SessionID)
	if err != nil {
		return nil, fmt.Errorf("remove attempt: %w", err)
	}
	if _, err := s.Remove(m); err != nil {
		return nil, fmt.Errorf("remove attempt: %w", err)
	}
	if err := e.repo.DeleteAttempt(ctx, m, s.Totals); err != nil {
		return nil, fmt.Errorf("remove attempt: %w", err)
	}
	e.logger.InfoContext(ctx, "attempt removed", "session_id", m.SessionID, "question_id", m.QuestionID)
	return s, nil
}

// DeleteSession deletes a stored session and its attempts.
func (e *Engine) DeleteSession(ctx context.Context, id string) error {
	if err := e.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	e.logger.InfoContext(ctx, "session deleted", "session_id", id)
	return nil
}

// Repair recomputes a stored session's totals from its attempt log and
// writes them back when they drifted. Returns whether anything changed.
func (e *Engine) Repair(ctx context.Context, id string) (bool, error) {
	s, err := e.repo.GetSession(ctx, id)
	if err != nil {
		return false, fmt.Errorf("repair session: %w", err)
	}
	want := exam.Replay(s.Attempts)
	if want == s.Totals {
		return false, nil
	}
	if err := e.repo.UpdateSession(ctx, id, store.Update{Totals: &want}); err != nil {
		return false, fmt.Errorf("repair session: %w", err)
	}
	e.logger.WarnContext(ctx, "session totals repaired", "session_id", id, "was", s.Totals, "now", want)
	return true, nil
}

func (e *Engine) newRunner(plan ModePlan, s *exam.Session) *Runner {
	r := &Runner{
		repo:     e.repo,
		clock:    e.opts.Clock,
		logger:   e.logger.With("session_id", s.ID),
		plan:     plan,
		sess:     s,
		autoTick: e.opts.AutoTick,
		interval: e.opts.TickInterval,
	}
	r.tmr = plan.NewTimer(func() { r.expired.Store(true) })
	return r
}
