// Package errors declares the error kinds returned by the training lifecycle
// engine. Every engine error wraps exactly one of these sentinels.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports malformed input: a negative fee, a missing field, an empty trainer list.
	ErrValidation = fmt.Errorf("validation failed")
	// ErrNotFound reports that a referenced id does not exist.
	ErrNotFound = fmt.Errorf("not found")
	// ErrInvalidTransition reports a state change that is not permitted from the current state.
	ErrInvalidTransition = fmt.Errorf("invalid transition")
	// ErrPrecondition reports that a dependent entity is not yet in the required state.
	ErrPrecondition = fmt.Errorf("precondition failed")
	// ErrConflict reports a concurrent modification detected through a version mismatch.
	ErrConflict = fmt.Errorf("conflict")
	// ErrAlreadyDecided reports a review of a vendor that was already approved or rejected.
	ErrAlreadyDecided = fmt.Errorf("already decided")
	// ErrForbidden reports that the caller's role lacks the required capability.
	ErrForbidden = fmt.Errorf("forbidden")
)

// IsRetryable reports whether err may be retried by re-fetching and re-applying
// the operation. Only conflicts qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
