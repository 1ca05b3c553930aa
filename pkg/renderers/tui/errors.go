package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoContext is returned when Fill is called with a nil context.
	ErrNoContext = errors.New("tui: context is required")
)
