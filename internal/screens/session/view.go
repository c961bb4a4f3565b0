package session

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			fmt.Sprintf("Error: %s\n\nPress any key to go back.", s.errMsg))
	case !s.activated:
		return layout.Centered(width, theme.Dim, "Preparing your session...")
	case s.completed:
		return layout.Centered(width, theme.Dim, "Saving results...")
	case s.confirmQuit:
		return renderQuitConfirm(width)
	}
	return s.renderQuestion(width)
}

// renderQuestion renders the progress line, the question with its options
// and any hint, explanation or feedback below it.
func (s *SessionScreen) renderQuestion(width int) string {
	p := s.runner.Progress()
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", s.index+1, p.Total))
	infoRight := theme.Dim.Render(fmt.Sprintf("%s %d  %s %d  answered %d",
		theme.Correct.Render("✓"), p.Correct,
		theme.Incorrect.Render("✗"), p.Wrong,
		p.Answered,
	))
	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner)))
	b.WriteString("\n")
	if p.Requested > p.Total && s.index == 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  Only %d of %d questions are available.", p.Total, p.Requested)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	body := lipgloss.NewStyle().Width(min(inner, 90)).Render(s.choice.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body))
	b.WriteString("\n")

	if s.hint != "" {
		b.WriteString(box(width, "Hint", s.hint, theme.Accent))
	}
	if s.explanation != "" && s.feedback == nil {
		b.WriteString(box(width, "Explanation", s.explanation, theme.Secondary))
	}
	if s.feedback != nil {
		b.WriteString(s.renderFeedback(width))
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render(s.notice)))
	}
	return b.String()
}

func (s *SessionScreen) renderFeedback(width int) string {
	fb := s.feedback
	var b strings.Builder
	b.WriteString("\n")
	if fb.Correct {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Correct.Render("Correct!")))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Incorrect.Render("Not quite")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Dim.Render("Correct answer: "+fb.CorrectAnswer)))
	}
	b.WriteString("\n")
	if fb.Explanation != "" {
		b.WriteString(box(width, "Explanation", fb.Explanation, theme.Secondary))
	}
	next := "Press any key to continue..."
	switch {
	case fb.Done:
		next = "Press any key to see your results..."
	case !fb.Advanced:
		next = "Press any key to try again..."
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(next)))
	return b.String()
}

// box renders a titled, bordered paragraph centered across width.
func box(width int, title, text string, accent color.Color) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(min(width-8, 80))
	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n" + text
	return "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(content)) + "\n"
}

// renderQuitConfirm renders the close confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString(theme.Body.Bold(true).Render("End this session now?"))
	b.WriteString("\n")
	b.WriteString(theme.Dim.Render("Unanswered questions will count as wrong."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Success).Render("[Y] Yes, end session"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Render("[N] No, keep going"))

	return "\n\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Dialog.Render(b.String()))
}
