package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrTimeout is returned when a script exceeds its time limit.
	ErrTimeout = errors.New("lua execution timeout")

	// ErrCommandNotAllowed is raised for commands outside the allow list.
	ErrCommandNotAllowed = errors.New("command not allowed")
)
