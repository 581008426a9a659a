package terminal

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("terminal: aborted")
	// ErrNoFields is returned when a form has nothing to prompt for.
	ErrNoFields = errors.New("terminal: form has no fields")
)
