package ballot_errors

import (
	"errors"
)

// Common errors
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrPollInactive    = errors.New("poll is not active")
	ErrPollEnded       = errors.New("poll has ended")
	ErrAlreadyVoted    = errors.New("already voted on this poll")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRateLimited     = errors.New("rate limited")
)

// ValidationError aggregates every schema violation for a single request.
// There is no partial success: either the input is fully valid or every
// failed rule is reported.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	msg := e.Messages[0]
	for _, m := range e.Messages[1:] {
		msg += "; " + m
	}
	return msg
}

// NewValidationError wraps a list of human-readable messages.
func NewValidationError(messages []string) error {
	return &ValidationError{Messages: messages}
}

// AsValidation reports whether err is a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
