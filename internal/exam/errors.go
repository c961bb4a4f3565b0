package exam

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a session or attempt lookup miss.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates an operation the session's state forbids,
	// such as recording into a completed session.
	ErrInvalidState = errors.New("invalid state")

	// ErrEmptyPool indicates that sampling found no eligible questions.
	// Callers turn it into a "no questions" message, not a failure.
	ErrEmptyPool = errors.New("no questions available")
)

// StateError describes an operation rejected because of the session state.
type StateError struct {
	Op    string
	State string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: session is %s", e.Op, e.State)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
