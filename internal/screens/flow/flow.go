// Package flow wires screens together: starting a session opens the exam
// screen, and finishing it replaces the exam with its summary.
package flow

import (
	"context"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/review"
	"github.com/abhisek/examprep/internal/router"
	sessionscreen "github.com/abhisek/examprep/internal/screens/session"
	"github.com/abhisek/examprep/internal/screens/summary"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/store"
)

// ErrorMsg reports a failure to start a session. The screen that asked
// shows it.
type ErrorMsg struct {
	Err error
}

// Deps are the services the screens share.
type Deps struct {
	Context context.Context
	Engine  *session.Engine
	Repo    store.Repository
	Logger  *slog.Logger
}

// Ctx returns the context for store calls.
func (d Deps) Ctx() context.Context {
	if d.Context == nil {
		return context.Background()
	}
	return d.Context
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Start creates a session for mode and pushes its exam screen.
func (d Deps) Start(mode exam.Mode, topicID string) tea.Cmd {
	return func() tea.Msg {
		r, err := d.Engine.Start(d.Ctx(), session.StartOptions{Mode: mode, TopicID: topicID})
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return router.PushScreenMsg{Screen: d.examScreen(r)}
	}
}

// Retake starts a new session over the frozen questions of sessionID.
func (d Deps) Retake(sessionID string) tea.Cmd {
	return func() tea.Msg {
		r, err := d.Engine.Retake(d.Ctx(), sessionID)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return router.PushScreenMsg{Screen: d.examScreen(r)}
	}
}

// Review pushes the summary screen for a stored session.
func (d Deps) Review(s *exam.Session) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: d.summaryScreen(session.BuildSummary(s), s, router.PopScreenMsg{})}
	}
}

func (d Deps) examScreen(r *session.Runner) *sessionscreen.SessionScreen {
	return sessionscreen.New(r, sessionscreen.Options{
		Context: d.Ctx(),
		Logger:  d.logger(),
		OnComplete: func(done sessionscreen.Runner) tea.Cmd {
			sum := done.Summary()
			s := done.Session()
			return func() tea.Msg {
				return router.ReplaceScreenMsg{Screen: d.summaryScreen(sum, s, router.PopToRootMsg{})}
			}
		},
	})
}

func (d Deps) summaryScreen(sum session.Summary, s *exam.Session, back tea.Msg) *summary.SummaryScreen {
	rev, err := review.Build(d.Ctx(), s, review.Options{Fallback: d.Repo})
	if err != nil {
		d.logger().WarnContext(d.Ctx(), "build review", "session_id", s.ID, "error", err)
		rev = nil
	}
	id := s.ID
	var retake func() tea.Cmd
	if len(s.Questions) > 0 {
		retake = func() tea.Cmd { return d.Retake(id) }
	}
	return summary.New(sum, rev, summary.Options{OnRetake: retake, Back: back})
}
