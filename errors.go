package reagent

import (
	"errors"
	"fmt"
)

// Contract violations fail a single action, never the loop. All of them wrap
// ErrContractViolation so callers can match the whole class with errors.Is.
var (
	ErrContractViolation = errors.New("contract violation")
	ErrUnknownAction     = fmt.Errorf("%w: unknown action", ErrContractViolation)
	ErrMissingArgument   = fmt.Errorf("%w: missing required argument", ErrContractViolation)
	ErrSchemaMismatch    = fmt.Errorf("%w: arguments do not match schema", ErrContractViolation)
)

var (
	// ErrStructuredOutput is reported when a completion argument fails the
	// structured-output contract. It fails the completion action and forces
	// another reasoning iteration.
	ErrStructuredOutput = errors.New("structured output validation failed")

	// ErrUnsupportedHookPoint is returned when registering a hook on a
	// lifecycle point the table does not support, or a pre hook on a post
	// point (and vice versa).
	ErrUnsupportedHookPoint = errors.New("unsupported hook point")

	// ErrDuplicateTool is returned when registering a tool name twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrReservedName is returned when registering a tool under a name the
	// agent keeps for itself, such as the completion action.
	ErrReservedName = errors.New("tool name is reserved")

	// ErrNilModel is returned when an agent is built without a model.
	ErrNilModel = errors.New("model is nil")
)

// BackendError wraps a failure of an external collaborator the loop cannot
// recover from, typically the model call. It is the only error kind that
// escapes a reply; no retry is attempted.
type BackendError struct {
	// Op names the failing operation, e.g. "model call".
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend failure: %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
