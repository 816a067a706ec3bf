// Package workflow runs the configured steps in order, halting on the first
// failure, and verifies the artifacts they were contracted to produce.
package workflow

import (
	"time"

	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gnzdotmx/climateflow/internal/validator"
)

// Step is one ordered unit of the pipeline
type Step = config.Step

// StepStatus is the lifecycle state of a step within one run
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// Terminal reports whether the status can no longer change
func (s StepStatus) Terminal() bool {
	return s != StepPending && s != ""
}

// FailureKind says which of the step failure modes occurred
type FailureKind string

const (
	FailurePrecondition FailureKind = "precondition_failed"
	FailureExecution    FailureKind = "execution_failed"
	FailureTimedOut     FailureKind = "timed_out"
	FailureInterrupted  FailureKind = "interrupted"
)

// Err returns the sentinel error for the failure kind
func (k FailureKind) Err() error {
	switch k {
	case FailurePrecondition:
		return ErrStepPreconditionFailed
	case FailureTimedOut:
		return ErrStepTimedOut
	case FailureInterrupted:
		return ErrOperatorInterrupted
	default:
		return ErrStepExecutionFailed
	}
}

// RunResult is the outcome of one step in one run. It starts pending and
// moves to a terminal status exactly once.
type RunResult struct {
	Number  int
	Name    string
	Target  string
	Status  StepStatus
	Failure FailureKind
	Reason  string

	ExitCode int
	Elapsed  time.Duration

	// Stdout and Stderr are bounded tails of the process output
	Stdout        string
	Stderr        string
	StderrDropped int64
	StartedAt     time.Time
	FinishedAt    time.Time
}

func newRunResult(s Step) RunResult {
	return RunResult{
		Number:   s.Number,
		Name:     s.Name,
		Target:   s.Target,
		Status:   StepPending,
		ExitCode: -1,
	}
}

// settle moves a pending result to a terminal status. It returns false and
// leaves the result untouched if it was already terminal.
func (r *RunResult) settle(status StepStatus, kind FailureKind, reason string) bool {
	if r.Status.Terminal() || !status.Terminal() {
		return false
	}
	r.Status = status
	r.Failure = kind
	r.Reason = reason
	return true
}

// Succeeded reports whether the step ran and succeeded
func (r RunResult) Succeeded() bool {
	return r.Status == StepSucceeded
}

// OutputStatus is the verification outcome of one expected artifact
type OutputStatus struct {
	Artifact config.Artifact
	// Files are the paths (relative to the root) that matched the artifact
	Files   []string
	Size    int64
	Present bool
}

// Report is everything observed during one call to Runner.Run
type Report struct {
	RunID      string
	StatePath  string
	StartedAt  time.Time
	FinishedAt time.Time

	Prerequisites []validator.Diagnostic
	ManualInputs  []validator.Diagnostic
	Results       []RunResult
	Outputs       []OutputStatus
}

func newReport(runID string, steps []Step, now time.Time) *Report {
	r := &Report{RunID: runID, StartedAt: now, Results: make([]RunResult, len(steps))}
	for i, s := range steps {
		r.Results[i] = newRunResult(s)
	}
	return r
}

// Result returns the result for a step name, or nil
func (r *Report) Result(name string) *RunResult {
	for i := range r.Results {
		if r.Results[i].Name == name {
			return &r.Results[i]
		}
	}
	return nil
}

// Count returns how many steps ended in status
func (r *Report) Count(status StepStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}
