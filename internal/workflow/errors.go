package workflow

import "errors"

// The engine is the trust boundary: every public operation maps its failures
// onto exactly one of these kinds. Raw store/notification errors never reach
// the caller.
var (
	// ErrNotFound means no ledger row / request exists for the reference.
	ErrNotFound = errors.New("status/request not found")
	// ErrStageNotPending means the operation targeted a stage that is not
	// currently awaiting action on the latest ledger row.
	ErrStageNotPending = errors.New("stage is not pending")
	// ErrConflict means a concurrent writer won the version race; the caller
	// should retry or surface the conflict.
	ErrConflict = errors.New("conflicting concurrent update")
	// ErrInternal is the opaque server-side failure; details are logged, not
	// returned.
	ErrInternal = errors.New("Internal server error")
)

// ValidationError reports missing or malformed caller input. The message
// carries enough detail to correct the input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(msg string) error { return &ValidationError{Message: msg} }

// IsValidation reports whether err is a caller-input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
