// Package plan contains the plan file naming rules and the decoder for the
// JSON document terraform show renders for a saved plan.
// This is part of the Functional Core - no I/O; GenerateFileName is the only
// function that reads randomness.
package plan

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrEmptyInput  = errors.New("plan output is empty")
	ErrInvalidJSON = errors.New("invalid JSON syntax")
	ErrNotAnObject = errors.New("plan output is not a JSON object")
)

// DecodeError wraps errors with context about where decoding failed.
type DecodeError struct {
	Offset  int64 // byte offset of a syntax error, zero if unknown
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("decode plan at offset %d: %s", e.Offset, e.Message)
	}
	return "decode plan: " + e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(offset int64, message string, err error) *DecodeError {
	return &DecodeError{
		Offset:  offset,
		Message: message,
		Err:     err,
	}
}
