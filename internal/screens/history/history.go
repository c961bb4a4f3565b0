package history

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/analytics"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/flow"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []exam.Session
	Topics   []question.Topic
	Err      error
}

type deletedMsg struct {
	ID  string
	Err error
}

// HistoryScreen lists past sessions, newest first, with the statistics
// derived from them.
type HistoryScreen struct {
	deps          flow.Deps
	sessions      []exam.Session
	report        analytics.Report
	selected      int
	loaded        bool
	confirmDelete bool
	errMsg        string
	notice        string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.EscapeHandler = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(deps flow.Deps) *HistoryScreen {
	return &HistoryScreen{deps: deps}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		sessions, err := deps.Repo.ListSessions(deps.Ctx())
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		topics, err := deps.Repo.FetchTopics(deps.Ctx())
		return historyLoadedMsg{Sessions: sessions, Topics: topics, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

// HandlesEscape lets Esc cancel a pending delete instead of leaving.
func (s *HistoryScreen) HandlesEscape() bool {
	return s.confirmDelete
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.confirmDelete {
		return hints(keys.Confirm, keys.Cancel)
	}
	return hints(keys.Review, keys.Retake, keys.Delete, keys.Up, keys.Back)
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		policy := analytics.DefaultPolicy()
		policy.Topics = msg.Topics
		s.report = analytics.Build(msg.Sessions, policy)
		// Newest first.
		s.sessions = make([]exam.Session, len(msg.Sessions))
		for i, sess := range msg.Sessions {
			s.sessions[len(msg.Sessions)-1-i] = sess
		}
		if s.selected >= len(s.sessions) {
			s.selected = max(len(s.sessions)-1, 0)
		}
		return s, nil

	case deletedMsg:
		if msg.Err != nil {
			s.notice = msg.Err.Error()
			return s, nil
		}
		s.notice = "Deleted session " + msg.ID
		return s, s.load()

	case flow.ErrorMsg:
		s.notice = msg.Err.Error()
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *HistoryScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	s.notice = ""
	if s.confirmDelete {
		s.confirmDelete = false
		if key.Matches(msg, keys.Confirm) {
			return s, s.deleteSelected()
		}
		return s, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case key.Matches(msg, keys.Up):
		if s.selected > 0 {
			s.selected--
		}
	case key.Matches(msg, keys.Down):
		if s.selected < len(s.sessions)-1 {
			s.selected++
		}
	case key.Matches(msg, keys.Review):
		if sess, ok := s.current(); ok {
			return s, s.deps.Review(sess)
		}
	case key.Matches(msg, keys.Retake):
		if sess, ok := s.current(); ok {
			if len(sess.Questions) == 0 {
				s.notice = "This session has no saved question list to retake."
				return s, nil
			}
			return s, s.deps.Retake(sess.ID)
		}
	case key.Matches(msg, keys.Delete):
		if _, ok := s.current(); ok {
			s.confirmDelete = true
		}
	}
	return s, nil
}

func (s *HistoryScreen) current() (*exam.Session, bool) {
	if s.selected < 0 || s.selected >= len(s.sessions) {
		return nil, false
	}
	return &s.sessions[s.selected], true
}

func (s *HistoryScreen) deleteSelected() tea.Cmd {
	sess, ok := s.current()
	if !ok {
		return nil
	}
	id, deps := sess.ID, s.deps
	return func() tea.Msg {
		return deletedMsg{ID: id, Err: deps.Engine.DeleteSession(deps.Ctx(), id)}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error), "Error: "+s.errMsg)
	}
	if !s.loaded {
		return layout.Centered(width, theme.Dim, "Loading history...")
	}
	if len(s.sessions) == 0 {
		return layout.Centered(width, theme.Hint, "No sessions yet. Start practicing!")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderStats(width))
	b.WriteString("\n")

	used := lipgloss.Height(b.String())
	rows := max(height-used-3, 3)
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}
	for i := start; i < len(s.sessions) && i < start+rows; i++ {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderRow(i)))
		b.WriteString("\n")
	}

	if s.confirmDelete {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Warning.Render("Delete this session and all its answers? [y/N]")))
	} else if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(s.notice)))
	}
	return b.String()
}

func (s *HistoryScreen) renderStats(width int) string {
	r := s.report
	line := fmt.Sprintf("%d sessions · %d questions · %.0f%% accuracy",
		r.Overall.Sessions, r.Overall.TotalQuestions, r.Overall.Accuracy())
	if r.Improvement != 0 {
		line += fmt.Sprintf(" · %+.1f pts trend", r.Improvement)
	}
	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Body.Bold(true).Render(line)))
	b.WriteString("\n")
	for _, in := range r.Insights {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(in)))
		b.WriteString("\n")
	}
	if len(r.Recommendations) > 0 {
		rec := r.Recommendations[0]
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Warning.Render("Next: "+rec.Message)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderRow(i int) string {
	sess := s.sessions[i]
	status := components.FormatClock(sess.Duration())
	if sess.Open() {
		status = "open"
	}
	prefix := "  "
	if i == s.selected {
		prefix = "> "
	}
	line := fmt.Sprintf("%s%s  %-12s %-14s %6s  %3d questions  %3.0f%%",
		prefix, sess.StartTime.Local().Format("Jan 02, 2006 15:04"), sess.Mode, sess.TopicID,
		status, sess.Totals.TotalQuestions, sess.Totals.Accuracy())

	style := lipgloss.NewStyle().Foreground(theme.Text)
	if sess.Open() {
		style = style.Foreground(theme.TextDim)
	}
	if i == s.selected {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.Render(line)
}
