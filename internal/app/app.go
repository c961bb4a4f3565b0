package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/flow"
	"github.com/abhisek/examprep/internal/screens/home"
	"github.com/abhisek/examprep/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	start  tea.Cmd
	width  int
	height int
}

// newAppModel creates a new AppModel with the given first screen. start,
// if non-nil, runs after the first screen's Init.
func newAppModel(first screen.Screen, start tea.Cmd) AppModel {
	return AppModel{
		router: router.New(first),
		start:  start,
	}
}

func (m AppModel) Init() tea.Cmd {
	var cmd tea.Cmd
	if active := m.router.Active(); active != nil {
		cmd = active.Init()
	}
	if m.start == nil {
		return cmd
	}
	return tea.Sequence(cmd, m.start)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.Close()
			return m, tea.Quit
		case "esc":
			if eh, ok := m.router.Active().(screen.EscapeHandler); ok && eh.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.ReportFocus = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	frame := layout.Frame{Hints: m.footerHints(active)}
	if active != nil {
		frame.Title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		frame.Status = sp.Status()
	}
	return frame.Render(m.width, m.height, m.router.View)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); len(hints) > 0 {
			return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program on the home screen. start, typically
// deps.Start or deps.Retake, opens a session right away when non-nil.
func Run(ctx context.Context, deps flow.Deps, start tea.Cmd) error {
	return RunScreen(ctx, home.New(deps), start)
}

// RunScreen starts the Bubble Tea program on first. Quitting while a
// session is running leaves it open in the store.
func RunScreen(ctx context.Context, first screen.Screen, start tea.Cmd) error {
	p := tea.NewProgram(newAppModel(first, start), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
