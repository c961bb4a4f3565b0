package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/flow"
	"github.com/abhisek/examprep/internal/screens/history"
	"github.com/abhisek/examprep/internal/screens/picker"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/theme"
)

var modeLabels = map[exam.Mode]string{
	exam.ModeChapterwise: "Chapter practice",
	exam.ModeLearn:       "Learn a chapter",
	exam.ModeQuickTest:   "Quick test",
	exam.ModeFullTest:    "Full test",
	exam.ModeBankQuick:   "Question bank: quick",
	exam.ModeBankFull:    "Question bank: full",
}

// HomeScreen lists the practice modes.
type HomeScreen struct {
	deps   flow.Deps
	menu   components.Menu
	notice string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps flow.Deps) *HomeScreen {
	var items []components.MenuItem
	for _, mode := range exam.AllModes() {
		items = append(items, modeItem(deps, mode))
	}
	items = append(items,
		components.MenuItem{Label: "History", Detail: "past sessions", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps)}
			}
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)
	return &HomeScreen{deps: deps, menu: components.NewMenu(items)}
}

func modeItem(deps flow.Deps, mode exam.Mode) components.MenuItem {
	item := components.MenuItem{Label: modeLabels[mode]}
	plan, err := deps.Engine.Planner().Plan(mode)
	if err != nil {
		item.Disabled = true
		return item
	}
	item.Detail = describe(plan)

	if plan.Strategy == session.StrategyShuffleAll || plan.Strategy == session.StrategyListAll {
		item.Action = func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: picker.New(deps, mode)}
			}
		}
		return item
	}
	item.Action = func() tea.Cmd { return deps.Start(mode, "") }
	return item
}

// describe summarizes a plan for the menu.
func describe(p session.ModePlan) string {
	var parts []string
	if p.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d questions", p.Count))
	} else {
		parts = append(parts, "whole chapter")
	}
	if p.Timed {
		parts = append(parts, components.FormatClock(p.TimeLimit))
	} else {
		parts = append(parts, "untimed")
	}
	if p.RetryWrong {
		parts = append(parts, "retry until right")
	}
	return strings.Join(parts, " · ")
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case flow.ErrorMsg:
		h.notice = msg.Err.Error()
		return h, nil
	case tea.KeyMsg:
		h.notice = ""
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, height < 20))
	sections = append(sections, theme.Subtitle.Width(cw).Render("Choose how you want to practice"))
	sections = append(sections, theme.Card.Width(cw).Render(strings.TrimRight(h.menu.View(), "\n")))
	if h.notice != "" {
		sections = append(sections, lipgloss.NewStyle().
			Width(cw).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(h.notice))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n\n"))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
