package services

import "errors"

var (
	// ErrNotFound covers malformed and legitimately absent ids alike, so the
	// public endpoint never leaks which it was.
	ErrNotFound = errors.New("not_found")
	// ErrRecipientNotFound means the referenced client/lead is not in the
	// agency's scope.
	ErrRecipientNotFound = errors.New("recipient_not_found")
	// ErrAlreadyProcessed means the quote already reached a terminal status.
	ErrAlreadyProcessed = errors.New("already_processed")
	// ErrExpired means the validity date passed before a decision was made.
	ErrExpired = errors.New("expired")
	// ErrDispatchFailed reports a failed email delivery. The quote state is
	// untouched; the caller may retry explicitly.
	ErrDispatchFailed = errors.New("dispatch_failed")
)

// ValidationError carries field -> code violations for user-correctable input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation_failed" }

func newValidationError(field, code string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: code}}
}
