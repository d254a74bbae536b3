// Package errs defines the typed errors shared by the engine's components.
//
// Callers classify failures with errors.Is / errors.As. The engine never
// retries internally: a VersionConflict means re-read and resubmit, an
// Invariant error means the process state is suspect and the operation was
// aborted before any write.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict means a write lost the compare-and-swap race;
	// the caller should re-read and resubmit.
	ErrVersionConflict = errors.New("version conflict")

	// ErrImmutableState means a mutation targeted a receipt that is no
	// longer a draft.
	ErrImmutableState = errors.New("receipt is not a draft")

	// ErrOverSettlement means the requested amount exceeds the open
	// balance between the pair. Nothing was mutated.
	ErrOverSettlement = errors.New("amount exceeds open balance")

	// ErrUnauthorized means the acting user lacks the required
	// relationship to the affected documents.
	ErrUnauthorized = errors.New("not authorized")
)

// ValidationError reports malformed or inconsistent input the caller can
// fix.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantError reports a broken internal arithmetic invariant. It is
// never user-facing and never silently repaired: the operation aborts.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "invariant violation: " + e.Msg }

// Invariantf builds an InvariantError with a formatted message.
func Invariantf(format string, args ...any) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvariant reports whether err is an InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
