package transform

import "errors"

// Errors returned by step operations.
var (
	// ErrUnknownStepType indicates a JSON step whose type is not registered.
	ErrUnknownStepType = errors.New("unknown step type")

	// ErrInvalidStepJSON indicates malformed step JSON.
	ErrInvalidStepJSON = errors.New("invalid step JSON")

	// ErrStepFailed wraps the reason a step could not be applied.
	ErrStepFailed = errors.New("step failed")
)
