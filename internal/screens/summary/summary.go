package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/review"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// Options configures the summary screen.
type Options struct {
	// OnRetake starts a new session over the same questions. Nil hides the
	// retake key.
	OnRetake func() tea.Cmd

	// Back is the message sent on Esc. Default: router.PopScreenMsg.
	Back tea.Msg
}

// SummaryScreen displays the session summary and the per-question review.
type SummaryScreen struct {
	summary  session.Summary
	review   *review.Review
	opts     Options
	selected int
	expanded map[int]bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen. rev may be nil when the review could not
// be built.
func New(sum session.Summary, rev *review.Review, opts Options) *SummaryScreen {
	if opts.Back == nil {
		opts.Back = router.PopScreenMsg{}
	}
	return &SummaryScreen{summary: sum, review: rev, opts: opts, expanded: make(map[int]bool)}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Questions"},
		{Key: "Enter", Description: "Details"},
	}
	if s.opts.OnRetake != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Retake"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc", "q":
		back := s.opts.Back
		return s, func() tea.Msg { return back }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.review != nil && s.selected < len(s.review.Items)-1 {
			s.selected++
		}
	case "enter":
		s.expanded[s.selected] = !s.expanded[s.selected]
	case "r", "R":
		if s.opts.OnRetake != nil {
			return s, s.opts.OnRetake()
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(headline(sum.Reason)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s · %s · Duration %s", sum.Mode, sum.TopicID, components.FormatClock(sum.Duration))))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Questions: %d    Correct: %d    Wrong: %d    Hints: %d    Accuracy: %.0f%%",
		sum.Totals.TotalQuestions, sum.Totals.CorrectAnswers, sum.Totals.WrongAnswers,
		sum.Totals.HintsUsed, sum.Accuracy)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(statsLine))
	b.WriteString("\n")

	barWidth := min(width-8, 60)
	bar := components.ScoreBar{
		Correct:    sum.Totals.CorrectAnswers,
		Wrong:      max(sum.Totals.WrongAnswers-sum.Unanswered, 0),
		Unanswered: sum.Unanswered,
		Width:      barWidth,
	}.View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar))
	b.WriteString("\n")

	if sum.Unanswered > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render(fmt.Sprintf("%d unanswered question(s) counted as wrong", sum.Unanswered))))
		b.WriteString("\n")
	}
	if !sum.Persisted {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Warning.Render("Results are not saved yet; they will be retried.")))
		b.WriteString("\n")
	}

	if s.review == nil {
		return b.String()
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", barWidth))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Dim.Render("Review")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")
	if s.review.Approximate {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("Questions were rebuilt from the current bank and may differ.")))
		b.WriteString("\n")
	}

	// Keep the cursor visible within the space left.
	used := lipgloss.Height(b.String())
	rows := height - used - 1
	if rows < 3 {
		rows = 3
	}
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}

	lines := 0
	for i := start; i < len(s.review.Items) && lines < rows; i++ {
		it := s.review.Items[i]
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderItem(i, it, barWidth)))
		b.WriteString("\n")
		lines++
		if s.expanded[i] {
			detail := renderDetail(it, barWidth)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, detail))
			b.WriteString("\n")
			lines += lipgloss.Height(detail)
		}
	}
	return b.String()
}

func (s *SummaryScreen) renderItem(i int, it review.Item, width int) string {
	mark, style := "·", theme.Dim
	switch it.Verdict {
	case review.VerdictCorrect:
		mark, style = "✓", theme.Correct
	case review.VerdictIncorrect:
		mark, style = "✗", theme.Incorrect
	}
	prefix := "  "
	if i == s.selected {
		prefix = "▸ "
	}
	text := it.Question.Text
	if limit := width - 12; limit > 1 && len([]rune(text)) > limit {
		text = string([]rune(text)[:limit-1]) + "…"
	}
	line := fmt.Sprintf("%s%s %2d. %s", prefix, style.Render(mark), i+1, text)
	if i == s.selected {
		return theme.Selected.Render(line)
	}
	return theme.Unselected.Render(line)
}

func renderDetail(it review.Item, width int) string {
	var b strings.Builder
	for j, opt := range it.Question.Options {
		line := fmt.Sprintf("%s) %s", components.OptionLabel(j), opt)
		switch {
		case opt == it.Question.CorrectAnswer:
			line = theme.Correct.Render(line)
		case it.Selected != nil && opt == *it.Selected:
			line = theme.Incorrect.Render(line)
		default:
			line = theme.Dim.Render(line)
		}
		b.WriteString(line + "\n")
	}
	var meta []string
	if it.Selected == nil {
		meta = append(meta, "not answered")
	}
	if it.Retries > 0 {
		meta = append(meta, fmt.Sprintf("%d retries", it.Retries))
	}
	if it.HintUsed {
		meta = append(meta, "hint used")
	}
	if it.TimeSpentMs > 0 {
		meta = append(meta, fmt.Sprintf("%.1fs", float64(it.TimeSpentMs)/1000))
	}
	if len(meta) > 0 {
		b.WriteString(theme.Hint.Render(strings.Join(meta, " · ")) + "\n")
	}
	if it.Question.Explanation != "" {
		b.WriteString(theme.Body.Render(it.Question.Explanation))
	}
	return lipgloss.NewStyle().Width(width).PaddingLeft(4).Render(strings.TrimRight(b.String(), "\n"))
}

func headline(r session.EndReason) string {
	switch r {
	case session.EndExpired:
		return "Time's up!"
	case session.EndClosed:
		return "Session ended"
	}
	return "Session complete!"
}
