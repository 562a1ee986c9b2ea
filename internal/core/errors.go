package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeNotInRoom    = "not_in_room"
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnknownUser  = "unknown_user"
	ErrCodeUnavailable  = "unavailable"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInvalidFrame = "invalid_message"
)

// ErrNotInRoom is returned when a room-scoped action needs a prior login.
var ErrNotInRoom = errors.New("not in room")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

func coreError(code, msg string, err error) *CoreError {
	return &CoreError{Code: code, Message: msg, Err: err}
}
