package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector component. Options are shown
// in their stored order.
type MultiChoice struct {
	Question string
	Options  []string
	Selected int

	// Revealed shows the correct answer and the chosen option after an
	// answer was submitted.
	Revealed      bool
	Chosen        string
	CorrectAnswer string
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{
		Question: question,
		Options:  options,
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation. Number keys and A-D jump to an
// option. Submission is left to the owner so it can attach metadata.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Revealed {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	default:
		if i, ok := OptionKey(key); ok && i < len(m.Options) {
			m.Selected = i
		}
	}

	return m, nil
}

// Value returns the option under the cursor.
func (m MultiChoice) Value() string {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return ""
	}
	return m.Options[m.Selected]
}

// Reveal marks chosen as submitted against correct.
func (m MultiChoice) Reveal(chosen, correct string) MultiChoice {
	m.Revealed = true
	m.Chosen = chosen
	m.CorrectAnswer = correct
	return m
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, OptionLabel(i), opt)

		style := theme.Unselected
		switch {
		case m.Revealed && opt == m.CorrectAnswer:
			style = theme.Correct
		case m.Revealed && opt == m.Chosen:
			style = theme.Incorrect
		case m.Revealed:
			style = theme.Dim
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// OptionLabel returns the letter shown before option i.
func OptionLabel(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// OptionKey maps "1".."9" and "a".."d" to an option index. Other letters
// stay free for screen commands.
func OptionKey(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	switch {
	case c >= '1' && c <= '9':
		return int(c - '1'), true
	case c >= 'a' && c <= 'd':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'D':
		return int(c - 'A'), true
	}
	return 0, false
}
