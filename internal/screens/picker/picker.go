// Package picker implements the topic selection screen shown before the
// chapter modes.
package picker

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/question"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/flow"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

type topicsLoadedMsg struct {
	Topics []question.Topic
	Err    error
}

// PickerScreen lets the learner choose the topic for a chapter session.
type PickerScreen struct {
	deps   flow.Deps
	mode   exam.Mode
	menu   components.Menu
	loaded bool
	errMsg string
	notice string
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)

// New creates a picker for mode.
func New(deps flow.Deps, mode exam.Mode) *PickerScreen {
	return &PickerScreen{deps: deps, mode: mode}
}

func (p *PickerScreen) Init() tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		topics, err := deps.Repo.FetchTopics(deps.Ctx())
		return topicsLoadedMsg{Topics: topics, Err: err}
	}
}

func (p *PickerScreen) Title() string {
	return fmt.Sprintf("Choose a topic (%s)", p.mode)
}

func (p *PickerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		p.loaded = true
		if msg.Err != nil {
			p.errMsg = msg.Err.Error()
			return p, nil
		}
		p.menu = components.NewMenu(p.items(msg.Topics))
		return p, nil

	case flow.ErrorMsg:
		p.notice = msg.Err.Error()
		return p, nil

	case tea.KeyMsg:
		p.notice = ""
		if msg.String() == "esc" {
			return p, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	var cmd tea.Cmd
	p.menu, cmd = p.menu.Update(msg)
	return p, cmd
}

// items lists chapters only for chapter practice and every topic for learn
// mode.
func (p *PickerScreen) items(topics []question.Topic) []components.MenuItem {
	var items []components.MenuItem
	for _, t := range topics {
		if p.mode == exam.ModeChapterwise && !t.IsChapter() {
			continue
		}
		id := t.ID
		label := t.Name
		if label == "" {
			label = t.ID
		}
		items = append(items, components.MenuItem{
			Label:  label,
			Detail: t.Description,
			Action: func() tea.Cmd { return p.deps.Start(p.mode, id) },
		})
	}
	return items
}

func (p *PickerScreen) View(width, height int) string {
	switch {
	case p.errMsg != "":
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error), "Error: "+p.errMsg)
	case !p.loaded:
		return layout.Centered(width, theme.Dim, "Loading topics...")
	case len(p.menu.Items) == 0:
		return layout.Centered(width, theme.Hint, "No topics yet. Load a question bank with `examprep bank load`.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, p.menu.View()))
	if p.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render(p.notice)))
	}
	return b.String()
}
