package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key or id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrNotYourTurn rejects a move by the side that is not on turn.
	ErrNotYourTurn = errors.New("it is not your turn")

	// ErrMoveNotAllowed rejects a move the current context does not admit.
	ErrMoveNotAllowed = errors.New("move not allowed in current context")

	// ErrSelfPairing rejects a game whose advocate and critic are the same participant.
	ErrSelfPairing = errors.New("participant cannot play both roles")

	// ErrInfeasiblePairing is returned when no self-free pairing could be drawn.
	ErrInfeasiblePairing = errors.New("no pairing without self-play found")

	// ErrScenariosExhausted is returned when a pair has no unplayed scenario left.
	ErrScenariosExhausted = errors.New("no unplayed scenario left")

	// ErrProtocol marks a game whose stored state the state machine cannot interpret.
	ErrProtocol = errors.New("game is in an unknown state")

	// ErrReportResolved marks a report that was already reviewed.
	ErrReportResolved = errors.New("report already resolved")
)

// Validation codes.
const (
	CodeRequired  = "required"
	CodeDuplicate = "duplicate"
	CodeUnchanged = "unchanged"
	CodeInvalid   = "invalid"
	CodeUnknown   = "unknown"
	CodeTooEarly  = "too_early"
	CodeTooLong   = "too_long"
)

// ValidationError rejects a request because of one of its fields.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError.
func Invalid(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
