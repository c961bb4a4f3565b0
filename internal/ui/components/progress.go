package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/ui/theme"
)

// Bar renders a single-colour bar width cells wide with frac of it filled.
// frac is clamped to [0, 1].
func Bar(frac float64, width int) string {
	width = max(width, 1)
	filled := int(float64(width)*clamp01(frac) + 0.5)
	return theme.BarFill.Render(strings.Repeat(" ", filled)) +
		theme.BarEmpty.Render(strings.Repeat(" ", width-filled))
}

// ScoreBar shows a finished or running session as correct, wrong and
// unanswered segments that together span Width cells.
type ScoreBar struct {
	Correct    int
	Wrong      int
	Unanswered int
	Width      int
}

// Total is the number of questions the bar covers.
func (s ScoreBar) Total() int {
	return s.Correct + s.Wrong + s.Unanswered
}

// segments splits Width between the three counts. Rounding goes to the
// correct and wrong segments first so a single answer is always visible.
func (s ScoreBar) segments() (correct, wrong, rest int) {
	width := max(s.Width, 1)
	total := s.Total()
	if total == 0 {
		return 0, 0, width
	}
	cells := func(n int) int {
		if n == 0 {
			return 0
		}
		return max(n*width/total, 1)
	}
	correct = min(cells(s.Correct), width)
	wrong = min(cells(s.Wrong), width-correct)
	rest = width - correct - wrong
	if s.Unanswered == 0 && rest > 0 {
		// Give truncation leftovers to the larger answered segment.
		if s.Correct >= s.Wrong {
			correct += rest
		} else {
			wrong += rest
		}
		rest = 0
	}
	return correct, wrong, rest
}

// View renders the bar followed by the accuracy over answered questions.
func (s ScoreBar) View() string {
	c, w, r := s.segments()
	bar := theme.BarCorrect.Render(strings.Repeat(" ", c)) +
		theme.BarWrong.Render(strings.Repeat(" ", w)) +
		theme.BarEmpty.Render(strings.Repeat(" ", r))

	label := "  -"
	if total := s.Total(); total > 0 {
		label = fmt.Sprintf("  %d%%", s.Correct*100/total)
	}
	return bar + lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
