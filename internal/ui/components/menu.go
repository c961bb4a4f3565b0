package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Disabled items are shown dimmed and
// skipped by the cursor.
type MenuItem struct {
	Label    string
	Detail   string // dim text rendered after the label
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list of actions. The first nine enabled items can also
// be triggered by their number.
type Menu struct {
	Items    []MenuItem
	Selected int
}

var menuKeys = struct {
	Up, Down, First, Last, Choose key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	First:  key.NewBinding(key.WithKeys("home", "g")),
	Last:   key.NewBinding(key.WithKeys("end", "G")),
	Choose: key.NewBinding(key.WithKeys("enter")),
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.next(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// next returns the first enabled index after from in direction dir, or -1.
func (m Menu) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

// shortcut maps a digit to the enabled item it numbers.
func (m Menu) shortcut(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return -1
	}
	n := int(s[0] - '0')
	for i, it := range m.Items {
		if it.Disabled {
			continue
		}
		if n--; n == 0 {
			return i
		}
	}
	return -1
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	move := func(i int) {
		if i >= 0 {
			m.Selected = i
		}
	}
	switch {
	case key.Matches(kmsg, menuKeys.Up):
		move(m.next(m.Selected, -1))
	case key.Matches(kmsg, menuKeys.Down):
		move(m.next(m.Selected, 1))
	case key.Matches(kmsg, menuKeys.First):
		move(m.next(-1, 1))
	case key.Matches(kmsg, menuKeys.Last):
		move(m.next(len(m.Items), -1))
	case key.Matches(kmsg, menuKeys.Choose):
		return m, m.activate()
	default:
		if i := m.shortcut(kmsg.String()); i >= 0 {
			m.Selected = i
			return m, m.activate()
		}
	}
	return m, nil
}

func (m Menu) activate() tea.Cmd {
	it, ok := m.Current()
	if !ok || it.Disabled || it.Action == nil {
		return nil
	}
	return it.Action()
}

// Current returns the highlighted item.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

func (m Menu) View() string {
	var b strings.Builder
	n := 0
	for i, it := range m.Items {
		var line string
		if it.Disabled {
			line = theme.Dim.Render("     " + it.Label)
		} else {
			n++
			num := "   "
			if n <= 9 {
				num = fmt.Sprintf("%d. ", n)
			}
			if i == m.Selected {
				line = theme.Selected.Render("▸ " + num + it.Label)
			} else {
				line = theme.Unselected.Render("  " + num + it.Label)
			}
		}
		if it.Detail != "" {
			line += "  " + theme.Hint.Render(it.Detail)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
