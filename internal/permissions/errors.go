package permissions

import (
	"errors"
	"fmt"
)

// The subsystem's error taxonomy. Legitimate denial never surfaces as an
// error: bool-returning APIs answer false with a nil error. Errors are
// reserved for infrastructure faults and programmer-level invalid input, so
// "store down" can never be confused with "legitimately denied".
var (
	// ErrAccessDenied is returned by mutating operations (session creation)
	// when the requested dashboard/brand is not granted. Recoverable; callers
	// render an access-denied response and move on.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound marks a missing session or permission record where an
	// identifier was given explicitly.
	ErrNotFound = errors.New("not found")

	// ErrStoreFault wraps backing-store failures. Callers must fail closed
	// (deny) while still surfacing the fault in logs.
	ErrStoreFault = errors.New("permission store fault")

	// ErrInvalidInput marks malformed input rejected before any store call.
	ErrInvalidInput = errors.New("invalid input")
)

func storeFault(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreFault, op, err)
}

func invalidInput(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidInput, field, err)
}
