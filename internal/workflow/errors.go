package workflow

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEnvironmentUnready means a prerequisite check failed; there is no override
	ErrEnvironmentUnready = errors.New("environment not ready")
	// ErrManualInputMissing means manual inputs were missing and the operator declined
	ErrManualInputMissing = errors.New("manual inputs missing")
	// ErrStepPreconditionFailed means a step's entry point was absent before invocation
	ErrStepPreconditionFailed = errors.New("step precondition failed")
	// ErrStepExecutionFailed means the step process could not start or exited non-zero
	ErrStepExecutionFailed = errors.New("step execution failed")
	// ErrStepTimedOut means the step process exceeded its bound
	ErrStepTimedOut = errors.New("step timed out")
	// ErrOutputVerificationFailed means every step succeeded but a contracted artifact is absent
	ErrOutputVerificationFailed = errors.New("output verification failed")
	// ErrOperatorInterrupted means the run was cancelled by the operator
	ErrOperatorInterrupted = errors.New("workflow interrupted by user")
	// ErrUnknownStep means a step reference matched no configured step
	ErrUnknownStep = errors.New("unknown step")
)

// StepError describes why a step did not succeed
type StepError struct {
	Number int
	Name   string
	Target string
	Kind   FailureKind
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s, %s): %s: %s", e.Number, e.Name, e.Target, e.Kind, e.Reason)
}

// Unwrap exposes the sentinel matching the failure kind
func (e *StepError) Unwrap() error {
	return e.Kind.Err()
}

// newStepError builds the error for a failed result
func newStepError(r RunResult) *StepError {
	return &StepError{
		Number: r.Number,
		Name:   r.Name,
		Target: r.Target,
		Kind:   r.Failure,
		Reason: r.Reason,
	}
}
