package service

import "errors"

var (
	// ErrNotFound is returned when a referenced document or record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when an operation is not legal from
	// the document's current verification state
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidState is returned when a local precondition for an operation
	// is unmet (e.g. submitting to a provider without selecting one)
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation is returned when a required field is missing or
	// malformed; it is always raised before any store write
	ErrValidation = errors.New("validation failed")

	// ErrIndexOutOfRange is returned when a suggestion index does not exist
	ErrIndexOutOfRange = errors.New("suggestion index out of range")

	// ErrUploadFailed is returned when an improved document upload cannot be
	// persisted
	ErrUploadFailed = errors.New("upload failed")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
