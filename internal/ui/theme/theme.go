// Package theme holds the colors and styles shared by the terminal UI and
// the plain-text command output.
package theme

import (
	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#2563EB")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#EF4444")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// Text styles.
var (
	Heading  = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Dim      = lipgloss.NewStyle().Foreground(TextDim)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Warning  = lipgloss.NewStyle().Foreground(Accent).Bold(true)
)

// Containers. Card frames lists on the home screen, Dialog frames the
// end-session confirmation.
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Accent).
		Padding(1, 3)
)

// Options and answer verdicts.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Unanswered = lipgloss.NewStyle().Foreground(TextDim)
)

// Bar cells are drawn as colored spaces.
var (
	BarFill    = lipgloss.NewStyle().Background(Secondary)
	BarCorrect = lipgloss.NewStyle().Background(Success)
	BarWrong   = lipgloss.NewStyle().Background(Error)
	BarEmpty   = lipgloss.NewStyle().Background(Border)
)
