package editor

import "errors"

// Errors returned by session operations.
var (
	// ErrUnknownCommand indicates a command name with no registration.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidSelection indicates a selection outside the document.
	ErrInvalidSelection = errors.New("selection out of range")

	// ErrUnsupportedFormat indicates a document extension with no codec.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
