// Package layout draws the application chrome around a screen's content.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Frame is the chrome of one render: a header with the product name, the
// active screen's title and its status, and a footer of key hints.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

var barStyle = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// Render draws header, body and footer. body receives the height left
// between them.
func (f Frame) Render(width, height int, body func(width, height int) string) string {
	header := f.header(width)
	footer := f.footer(width)
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(body(width, contentHeight))
	return header + "\n" + content + "\n" + footer
}

// header puts the product name left, the title centered and the status
// right. The status is usually a running exam's clock.
func (f Frame) header(width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  ExamPrep")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(f.Title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(f.Status)

	inner := max(width-4, 0)
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	leftGap := max((inner-cw)/2-lw, 1)
	rightGap := max(inner-lw-leftGap-cw-rw, 1)

	line := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
	return barStyle.Width(width).Render(line)
}

// footer lists as many hints as fit on one line, in order.
func (f Frame) footer(width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	line := " "
	for _, h := range f.Hints {
		part := "  " + keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		if lipgloss.Width(line+part) > width-4 {
			break
		}
		line += part
	}
	return barStyle.Width(width).Render(line)
}

// Centered renders msg centered across width, a couple of lines down.
func Centered(width int, style lipgloss.Style, msg string) string {
	return style.Width(width).Align(lipgloss.Center).Render("\n\n" + msg)
}
