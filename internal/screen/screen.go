// Package screen defines what the router needs from a screen, plus the
// optional hooks the app frame looks for.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/ui/layout"
)

// Screen is one page of the terminal UI. View draws only the body; the app
// adds the header and footer around it.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider supplies the footer hints. Screens without it get the
// app's default hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a status
// line on the right of the header.
type StatusProvider interface {
	Status() string
}

// EscapeHandler is implemented by screens that handle Esc themselves
// instead of letting the app pop them.
type EscapeHandler interface {
	HandlesEscape() bool
}

// Leaver is implemented by screens that hold resources, such as a running
// session's timer. Leave is called once when the screen is removed from the
// stack or the program quits.
type Leaver interface {
	Leave()
}
