package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	sess "github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
)

// Runner is the part of *sess.Runner the screen drives.
type Runner interface {
	Activate(ctx context.Context) error
	Current() (question.Question, int, bool)
	ShowHint() (string, bool)
	ShowExplanation() (string, bool)
	Answer(ctx context.Context, option string, meta sess.AnswerMeta) (sess.Feedback, error)
	Skip(ctx context.Context) (bool, error)
	Finish(ctx context.Context) error
	CloseTab(ctx context.Context, confirmed bool) (bool, error)
	Tick(ctx context.Context) bool
	Hide()
	Show(ctx context.Context) bool
	Flush(ctx context.Context) error
	Pending() bool
	State() sess.State
	Plan() sess.ModePlan
	Session() *exam.Session
	Progress() sess.Progress
	Summary() sess.Summary
	Stop()
}

var _ Runner = (*sess.Runner)(nil)

// Options configures the exam screen.
type Options struct {
	Context context.Context
	Logger  *slog.Logger

	// OnComplete returns the command run once the session has ended. The
	// default pops the screen.
	OnComplete func(Runner) tea.Cmd
}

// SessionScreen implements screen.Screen for a running exam.
type SessionScreen struct {
	runner Runner
	ctx    context.Context
	logger *slog.Logger
	onDone func(Runner) tea.Cmd

	activated bool
	completed bool
	question  question.Question
	index     int
	choice    components.MultiChoice

	hint        string
	explanation string
	feedback    *sess.Feedback
	confirmQuit bool
	hidden      bool

	notice string // recoverable error, cleared by the next key
	errMsg string // fatal error, any key leaves
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.EscapeHandler = (*SessionScreen)(nil)
var _ screen.Leaver = (*SessionScreen)(nil)

// New creates a SessionScreen for a runner that has not been activated.
func New(r Runner, opts Options) *SessionScreen {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OnComplete == nil {
		opts.OnComplete = func(Runner) tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return &SessionScreen{
		runner: r,
		ctx:    opts.Context,
		logger: opts.Logger,
		onDone: opts.OnComplete,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	r, ctx := s.runner, s.ctx
	return func() tea.Msg {
		return activatedMsg{Err: r.Activate(ctx)}
	}
}

func (s *SessionScreen) Title() string {
	plan := s.runner.Plan()
	if topic := s.runner.Session().TopicID; topic != "" && topic != string(plan.Mode) {
		return fmt.Sprintf("%s · %s", plan.Mode, topic)
	}
	return string(plan.Mode)
}

// HandlesEscape keeps the app from popping a running exam; Esc asks for
// confirmation instead.
func (s *SessionScreen) HandlesEscape() bool {
	return s.activated && !s.completed && s.errMsg == ""
}

func (s *SessionScreen) Status() string {
	if !s.activated {
		return ""
	}
	p := s.runner.Progress()
	if p.Timed {
		return components.Countdown(p.Remaining)
	}
	return "elapsed " + components.FormatClock(p.Elapsed)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End session"},
			{Key: "N", Description: "Keep going"},
		}
	case s.feedback != nil:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓/1-4", Description: "Choose"},
		{Key: "Enter", Description: "Submit"},
	}
	if s.question.Hint != "" {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "Hint"})
	}
	if s.question.Explanation != "" {
		hints = append(hints, layout.KeyHint{Key: "E", Description: "Explain"})
	}
	return append(hints,
		layout.KeyHint{Key: "S", Description: "Skip"},
		layout.KeyHint{Key: "F", Description: "Finish"},
		layout.KeyHint{Key: "Esc", Description: "Quit"},
	)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case activatedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.activated = true
		s.loadQuestion()
		return s, tickCmd()

	case timerTickMsg:
		return s.handleTick()

	case tea.FocusMsg:
		s.hidden = false
		if s.activated && !s.completed && s.runner.Show(s.ctx) {
			return s, s.complete()
		}
		return s, nil

	case tea.BlurMsg:
		s.hidden = true
		if s.activated && !s.completed {
			s.runner.Hide()
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleTick() (screen.Screen, tea.Cmd) {
	if !s.activated || s.completed {
		return s, nil
	}
	if s.runner.Tick(s.ctx) {
		s.logger.InfoContext(s.ctx, "session expired", "session_id", s.runner.Session().ID)
		return s, s.complete()
	}
	return s, tickCmd()
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if !s.activated || s.completed {
		return s, nil
	}
	s.notice = ""

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			done, err := s.runner.CloseTab(s.ctx, true)
			if err != nil {
				s.notice = err.Error()
				return s, nil
			}
			if done {
				return s, s.complete()
			}
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.feedback != nil {
		fb := s.feedback
		s.feedback = nil
		if fb.Done {
			return s, s.complete()
		}
		if _, _, ok := s.runner.Current(); !ok && s.runner.State() == sess.StateActive {
			// Past the last question with the finalize still unsaved.
			if err := s.runner.Finish(s.ctx); err != nil {
				s.notice = "Could not save the session end: " + err.Error()
				s.feedback = fb
				return s, nil
			}
			return s, s.complete()
		}
		s.loadQuestion()
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "enter":
		return s.submit()
	case "h", "H":
		if h, ok := s.runner.ShowHint(); ok {
			s.hint = h
		}
		return s, nil
	case "e", "E":
		if e, ok := s.runner.ShowExplanation(); ok {
			s.explanation = e
		}
		return s, nil
	case "s", "S":
		done, err := s.runner.Skip(s.ctx)
		if s.runner.State() == sess.StateCompleted {
			return s, s.complete()
		}
		if err != nil {
			s.notice = err.Error()
			return s, nil
		}
		if done {
			return s, s.complete()
		}
		s.loadQuestion()
		return s, nil
	case "f", "F":
		if err := s.runner.Finish(s.ctx); err != nil {
			s.notice = err.Error()
			return s, nil
		}
		return s, s.complete()
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	return s, cmd
}

// submit answers the current question with the highlighted option.
func (s *SessionScreen) submit() (screen.Screen, tea.Cmd) {
	option := s.choice.Value()
	if option == "" {
		return s, nil
	}
	fb, err := s.runner.Answer(s.ctx, option, sess.AnswerMeta{
		HintUsed:          s.hint != "",
		ExplanationViewed: s.explanation != "",
	})
	if err != nil {
		var se *exam.StateError
		if errors.As(err, &se) {
			if s.runner.State() == sess.StateCompleted {
				// Time ran out before the answer arrived.
				return s, s.complete()
			}
			s.errMsg = err.Error()
			return s, nil
		}
		if fb == (sess.Feedback{}) {
			// Nothing was recorded; the learner can submit again.
			s.notice = "Could not save your answer: " + err.Error()
			return s, nil
		}
		// The answer was saved but ending the session was not.
		s.notice = "Could not save the session end. Continue to retry."
		s.logger.ErrorContext(s.ctx, "finish session", "session_id", s.runner.Session().ID, "error", err)
	}
	s.choice = s.choice.Reveal(option, fb.CorrectAnswer)
	s.feedback = &fb
	return s, nil
}

// loadQuestion shows the runner's current question with fresh per-question
// state.
func (s *SessionScreen) loadQuestion() {
	q, idx, ok := s.runner.Current()
	if !ok {
		return
	}
	s.question = q
	s.index = idx
	s.choice = components.NewMultiChoice(q.Text, q.Options)
	s.hint = ""
	s.explanation = ""
}

// complete marks the screen done and hands over to OnComplete. A finalize
// that failed to persist is retried once here.
func (s *SessionScreen) complete() tea.Cmd {
	if s.completed {
		return nil
	}
	s.completed = true
	s.confirmQuit = false
	if s.runner.Pending() {
		if err := s.runner.Flush(s.ctx); err != nil {
			s.logger.WarnContext(s.ctx, "finalize still pending", "session_id", s.runner.Session().ID, "error", err)
		}
	}
	return s.onDone(s.runner)
}

// Leave stops the runner's timer. A session that has not ended stays open
// in storage.
func (s *SessionScreen) Leave() {
	if s.runner.Pending() {
		if err := s.runner.Flush(s.ctx); err != nil {
			s.logger.WarnContext(s.ctx, "finalize lost on exit", "session_id", s.runner.Session().ID, "error", err)
		}
	}
	s.runner.Stop()
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
