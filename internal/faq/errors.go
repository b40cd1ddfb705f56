package faq

import "errors"

// Tree and session errors. Callers match them with errors.Is; the
// concrete error usually wraps one of these with the offending ID.
var (
	// ErrNotFound indicates that a referenced node does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIndex indicates a delete or move referenced an out-of-range position.
	ErrIndex = errors.New("index out of range")

	// ErrPrecondition indicates an operation was attempted in a state that
	// does not allow it (no active node, no input documents, missing column).
	ErrPrecondition = errors.New("precondition failed")

	// ErrFormat indicates a stored document could not be decoded.
	ErrFormat = errors.New("format error")
)

// FormatError reports a document that could not be decoded. Msg is the
// underlying parser diagnostic, kept verbatim for the author.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	return "format error: " + e.Msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is makes every FormatError match ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
