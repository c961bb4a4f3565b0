package components

import (
	"fmt"
	"time"

	"github.com/abhisek/examprep/internal/ui/theme"
)

// CountdownWarning is the remaining time below which the countdown turns
// to the warning style.
const CountdownWarning = time.Minute

// FormatClock formats d as m:ss, or h:mm:ss from one hour up. Negative
// durations render as 0:00.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Truncate(time.Second).Seconds())
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Countdown renders the remaining time of a timed session.
func Countdown(remaining time.Duration) string {
	label := "⏱ " + FormatClock(remaining)
	if remaining < CountdownWarning {
		return theme.Warning.Render(label)
	}
	return theme.Body.Render(label)
}
