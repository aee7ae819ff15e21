package domain

import "errors"

var (
	// ErrDuplicateUsername is returned when a username is already registered.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrAthleteNotFound is returned when a user id does not resolve to an athlete.
	ErrAthleteNotFound = errors.New("athlete not found")
)

// Validation messages returned to clients verbatim.
const (
	MsgUsernameRequired = "Path `username` is required."
	MsgInvalidDuration  = "Invalid exercise duration"
	MsgInvalidDate      = "Invalid exercise date"
	MsgInvalidLogDate   = "Invalid log date"
)

// ValidationError reports a rejected input field. Message is user facing.
type ValidationError struct {
	Field   string
	Message string
	// FromStore marks a rejection raised by a storage constraint rather than
	// by the service's own checks.
	FromStore bool
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StoreRejected builds the ValidationError for a violated storage constraint.
func StoreRejected(field, message string) error {
	return &ValidationError{Field: field, Message: message, FromStore: true}
}
