package model

import (
	"errors"
	"fmt"
)

// Errors returned by document model operations.
var (
	// ErrPositionOutOfRange indicates an offset outside the document.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrUnknownNodeType indicates a node type name not present in the schema.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrInvalidContent indicates children that do not match a content expression.
	ErrInvalidContent = errors.New("invalid content")

	// ErrMissingAttribute indicates a required attribute without a value.
	ErrMissingAttribute = errors.New("missing required attribute")

	// ErrInvalidJSON indicates malformed node JSON.
	ErrInvalidJSON = errors.New("invalid node JSON")

	// ErrInvalidSchema indicates a schema specification that cannot be built.
	ErrInvalidSchema = errors.New("invalid schema")
)

// ReplaceError reports a replace that could not be performed.
type ReplaceError struct {
	From    int
	To      int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ReplaceError) Error() string {
	return fmt.Sprintf("replace [%d:%d): %s", e.From, e.To, e.Message)
}

// Unwrap returns the underlying error.
func (e *ReplaceError) Unwrap() error {
	return e.Err
}
