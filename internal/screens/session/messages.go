package session

import "time"

// activatedMsg is sent once the runner has persisted the session and
// started its timer.
type activatedMsg struct {
	Err error
}

// timerTickMsg is sent every second to advance the timer and redraw the
// countdown.
type timerTickMsg time.Time
