package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/timer"
)

// State is the lifecycle state of a running session. A session that is
// never finalized stays open in storage; no state marks it abandoned.
type State int

const (
	StateCreated State = iota
	StateActive
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EndReason records why a session completed.
type EndReason string

const (
	EndFinished EndReason = "finished"
	EndExpired  EndReason = "expired"
	EndClosed   EndReason = "closed"
)

// AnswerMeta carries per-answer flags the presentation layer tracked.
type AnswerMeta struct {
	HintUsed          bool
	ExplanationViewed bool
}

// Feedback is the result of answering the current question.
type Feedback struct {
	Correct       bool
	CorrectAnswer string
	Explanation   string

	// Advanced is false when the learner must retry the same question.
	Advanced bool

	// Done is true when the answer completed the session.
	Done bool
}

// Progress is a snapshot of where the learner is in the session.
type Progress struct {
	Index     int
	Total     int
	Answered  int
	Correct   int
	Wrong     int
	Timed     bool
	Remaining time.Duration
	Elapsed   time.Duration

	// Requested is the question count the plan asked for when the pool
	// could not fill it, otherwise 0.
	Requested int
}

type finalizeReq struct {
	backfill []exam.Attempt
	totals   exam.Totals
	end      time.Time
}

// Runner drives one session through its lifecycle. All methods are safe
// for concurrent use; the tick loop runs on its own goroutine.
type Runner struct {
	repo     store.SessionRepo
	clock    timer.Clock
	logger   *slog.Logger
	plan     ModePlan
	autoTick bool
	interval time.Duration

	// Set by the countdown's expiry callback, which must not take mu.
	expired atomic.Bool

	mu        sync.Mutex
	sess      *exam.Session
	state     State
	reason    EndReason
	idx       int
	shownAt   time.Time
	hintShown bool
	explShown bool
	tmr       timer.Timer
	loop      *timer.Loop
	pending   *finalizeReq
	requested int
}

// Activate persists the session with its frozen question list and starts
// the timer. Called when the first question is displayed.
func (r *Runner) Activate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateCreated {
		return &exam.StateError{Op: "activate", State: r.state.String()}
	}

	now := r.clock.Now()
	r.sess.StartTime = now
	if err := r.repo.CreateSession(ctx, r.sess); err != nil {
		r.sess.StartTime = time.Time{}
		return fmt.Errorf("activate session: %w", err)
	}

	r.state = StateActive
	r.shownAt = now
	r.tmr.Start(now)
	if r.autoTick {
		r.loop = timer.Run(context.Background(), r.clock, r.interval, r.onTick)
	}
	r.logger.InfoContext(ctx, "session started",
		"mode", r.sess.Mode, "topic", r.sess.TopicID, "questions", len(r.sess.Questions), "time_limit", r.sess.TimeLimit)
	return nil
}

// Current returns the question being shown and its index. ok is false
// unless the session is active.
func (r *Runner) Current() (q question.Question, index int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive || r.idx >= len(r.sess.Questions) {
		return question.Question{}, r.idx, false
	}
	return r.sess.Questions[r.idx], r.idx, true
}

// ShowHint marks the hint of the current question as used and returns it.
func (r *Runner) ShowHint() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive || r.idx >= len(r.sess.Questions) {
		return "", false
	}
	h := r.sess.Questions[r.idx].Hint
	if h == "" {
		return "", false
	}
	r.hintShown = true
	return h, true
}

// ShowExplanation marks the explanation of the current question as viewed
// and returns it.
func (r *Runner) ShowExplanation() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive || r.idx >= len(r.sess.Questions) {
		return "", false
	}
	e := r.sess.Questions[r.idx].Explanation
	if e == "" {
		return "", false
	}
	r.explShown = true
	return e, true
}

// Answer records an attempt for the current question. The attempt is
// persisted before the in-memory ledger changes; on a persistence error
// nothing changes and the call may be retried.
func (r *Runner) Answer(ctx context.Context, option string, meta AnswerMeta) (Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive {
		return Feedback{}, &exam.StateError{Op: "answer", State: r.state.String()}
	}
	if r.idx >= len(r.sess.Questions) {
		return Feedback{}, &exam.StateError{Op: "answer", State: "past last question"}
	}
	now := r.clock.Now()
	if err := r.deadlineLocked(ctx, "answer", now); err != nil {
		return Feedback{}, err
	}

	q := r.sess.Questions[r.idx]
	correct := question.CheckAnswer(option, q)
	selected := option
	a := exam.Attempt{
		SessionID:         r.sess.ID,
		QuestionID:        q.ID,
		QuestionIndex:     r.idx,
		Selected:          &selected,
		Correct:           correct,
		TimeSpentMs:       now.Sub(r.shownAt).Milliseconds(),
		HintUsed:          meta.HintUsed || r.hintShown,
		ExplanationViewed: meta.ExplanationViewed || r.explShown,
		Timestamp:         r.uniqueTimestamp(q.ID, now),
	}

	next := r.sess.Totals.Add(a)
	if err := r.repo.PersistAttempt(ctx, a, next); err != nil {
		return Feedback{}, fmt.Errorf("record answer: %w", err)
	}
	if _, err := r.sess.Record(a); err != nil {
		return Feedback{}, fmt.Errorf("record answer: %w", err)
	}

	fb := Feedback{Correct: correct, CorrectAnswer: q.CorrectAnswer, Explanation: q.Explanation}
	if correct || !r.plan.RetryWrong {
		fb.Advanced = true
		if r.advanceLocked(now) {
			if err := r.finishLocked(ctx, EndFinished); err != nil {
				return fb, err
			}
			fb.Done = true
		}
	} else {
		r.shownAt = now
	}
	return fb, nil
}

// Skip moves past the current question without recording an attempt. The
// question is backfilled as unanswered when the session ends.
func (r *Runner) Skip(ctx context.Context) (done bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive {
		return false, &exam.StateError{Op: "skip", State: r.state.String()}
	}
	now := r.clock.Now()
	if err := r.deadlineLocked(ctx, "skip", now); err != nil {
		return false, err
	}
	if r.advanceLocked(now) {
		if err := r.finishLocked(ctx, EndFinished); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Finish completes the session at the learner's request. Calling it again
// after completion is a no-op.
func (r *Runner) Finish(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishLocked(ctx, EndFinished)
}

// CloseTab handles the learner closing the exam screen. An unconfirmed
// close leaves the session running. Returns whether the session completed.
func (r *Runner) CloseTab(ctx context.Context, confirmed bool) (bool, error) {
	if !confirmed {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.finishLocked(ctx, EndClosed); err != nil {
		return false, err
	}
	return true, nil
}

// Tick advances the timer by one tick. Returns true when this tick expired
// the session.
func (r *Runner) Tick(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive {
		return false
	}
	r.tmr.Tick(r.clock.Now())
	return r.expireLocked(ctx)
}

// Hide pauses tick accounting while the exam screen is in the background.
func (r *Runner) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateActive {
		r.tmr.Hide(r.clock.Now())
	}
}

// Show resumes after Hide and resynchronizes the countdown with the wall
// clock. Returns true when the resync expired the session.
func (r *Runner) Show(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateActive {
		return false
	}
	r.tmr.Show(r.clock.Now())
	return r.expireLocked(ctx)
}

// Flush retries a finalize that failed to persist when the session
// expired. A no-op when nothing is pending.
func (r *Runner) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return nil
	}
	p := r.pending
	if err := r.repo.FinalizeSession(ctx, r.sess.ID, p.backfill, p.totals, p.end); err != nil {
		return fmt.Errorf("flush session: %w", err)
	}
	r.pending = nil
	return nil
}

// Pending reports whether a finalize is waiting for Flush.
func (r *Runner) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

// Stop tears the runner down: the tick loop is stopped and the timer
// halted. An unfinished session stays open in storage.
func (r *Runner) Stop() {
	r.mu.Lock()
	loop := r.loop
	r.loop = nil
	r.tmr.Stop(r.clock.Now())
	r.mu.Unlock()

	loop.Stop()
}

// State returns the lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// EndReason returns why the session completed, or "" while it runs.
func (r *Runner) EndReason() EndReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reason
}

// Plan returns the mode plan the session runs under.
func (r *Runner) Plan() ModePlan {
	return r.plan
}

// Session returns a copy of the session record.
func (r *Runner) Session() *exam.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sess.Clone()
}

// Progress returns the learner's position and the timer readings.
func (r *Runner) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	return Progress{
		Index:     r.idx,
		Total:     len(r.sess.Questions),
		Answered:  len(r.sess.AnsweredIndexes()),
		Correct:   r.sess.Totals.CorrectAnswers,
		Wrong:     r.sess.Totals.WrongAnswers,
		Timed:     r.plan.Timed,
		Remaining: r.tmr.Remaining(now),
		Elapsed:   r.tmr.Elapsed(now),
		Requested: r.requested,
	}
}

// Summary builds the end-of-session summary.
func (r *Runner) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := BuildSummary(r.sess)
	s.Reason = r.reason
	s.Persisted = r.pending == nil
	return s
}

func (r *Runner) onTick(time.Time) {
	r.Tick(context.Background())
}

// advanceLocked moves to the next question. Returns true when the list is
// exhausted.
func (r *Runner) advanceLocked(now time.Time) bool {
	r.idx++
	r.shownAt = now
	r.hintShown = false
	r.explShown = false
	return r.idx >= len(r.sess.Questions)
}

// deadlineLocked expires the session when the countdown's wall-clock
// deadline has passed, however late the last tick was. Nothing may be
// recorded after that.
func (r *Runner) deadlineLocked(ctx context.Context, op string, now time.Time) error {
	r.tmr.Sync(now)
	if r.expireLocked(ctx) {
		return &exam.StateError{Op: op, State: "expired"}
	}
	return nil
}

func (r *Runner) expireLocked(ctx context.Context) bool {
	if !r.expired.Load() || r.state != StateActive {
		return false
	}
	if err := r.finishLocked(ctx, EndExpired); err != nil {
		r.logger.ErrorContext(ctx, "finalize on expiry failed", "error", err)
	}
	return true
}

// finishLocked backfills every unanswered index, ends the session and
// persists it. Expiry completes even when persistence fails; the finalize
// is then kept for Flush.
func (r *Runner) finishLocked(ctx context.Context, reason EndReason) error {
	switch r.state {
	case StateCompleted:
		return nil
	case StateCreated:
		return &exam.StateError{Op: "finish", State: r.state.String()}
	}

	end := r.clock.Now()
	answered := r.sess.AnsweredIndexes()
	var backfill []exam.Attempt
	totals := r.sess.Totals
	queued := make(map[exam.Matcher]bool)
	for i, q := range r.sess.Questions {
		if answered[i] {
			continue
		}
		a := exam.Attempt{
			SessionID:     r.sess.ID,
			QuestionID:    q.ID,
			QuestionIndex: i,
			Correct:       false,
			Timestamp:     end,
			Backfilled:    true,
		}
		// A question listed twice still gets one row per index.
		for queued[a.Key()] || r.sess.Has(a.Key()) {
			a.Timestamp = a.Timestamp.Add(time.Microsecond)
		}
		queued[a.Key()] = true
		backfill = append(backfill, a)
		totals = totals.Add(a)
	}

	err := r.repo.FinalizeSession(ctx, r.sess.ID, backfill, totals, end)
	if err != nil && reason != EndExpired {
		return fmt.Errorf("finish session: %w", err)
	}
	if err != nil {
		r.pending = &finalizeReq{backfill: backfill, totals: totals, end: end}
	}

	for _, a := range backfill {
		if _, rerr := r.sess.Record(a); rerr != nil {
			r.logger.ErrorContext(ctx, "backfill rejected", "question_id", a.QuestionID, "error", rerr)
		}
	}
	r.sess.EndTime = &end
	r.state = StateCompleted
	r.reason = reason
	r.tmr.Stop(end)
	// Cancel, not Stop: this may run on the loop goroutine.
	r.loop.Cancel()

	r.logger.InfoContext(ctx, "session completed",
		"reason", reason, "backfilled", len(backfill),
		"correct", r.sess.Totals.CorrectAnswers, "total", r.sess.Totals.TotalQuestions,
		"persisted", err == nil)
	return nil
}

// uniqueTimestamp nudges t forward until no recorded attempt for qid
// carries it, so two answers never share a natural key.
func (r *Runner) uniqueTimestamp(qid string, t time.Time) time.Time {
	for r.sess.Has(exam.Matcher{SessionID: r.sess.ID, QuestionID: qid, Timestamp: t}) {
		t = t.Add(time.Microsecond)
	}
	return t
}
