// Package command runs external processes with a timeout and keeps a bounded
// tail of their output.
package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultTailBytes is how much of each output stream is kept when a request
// does not say otherwise
const DefaultTailBytes = 4096

// waitDelay bounds how long Wait blocks on output pipes after the process is killed
const waitDelay = 5 * time.Second

// Request describes one process invocation
type Request struct {
	Name    string
	Args    []string
	Dir     string
	Env     []string // appended to the current environment
	Timeout time.Duration
	// TailBytes caps the captured stdout and stderr; zero means DefaultTailBytes
	TailBytes int
}

// Result is the observable outcome of a process invocation
type Result struct {
	ExitCode        int
	Stdout          string
	Stderr          string
	StdoutTruncated int64 // bytes dropped from the head of stdout
	StderrTruncated int64 // bytes dropped from the head of stderr
	Elapsed         time.Duration
	TimedOut        bool
	// StartErr is set when the process could not be started at all
	StartErr error
}

// Success reports whether the process ran and exited with status zero
func (r Result) Success() bool {
	return r.StartErr == nil && !r.TimedOut && r.ExitCode == 0
}

// Executor runs external commands
type Executor interface {
	// Run blocks until the process exits, the timeout elapses or ctx is
	// cancelled. A cancelled ctx is returned as an error; every other
	// outcome is described by Result.
	Run(ctx context.Context, req Request) (Result, error)
	LookPath(file string) (string, error)
}

// ExecExecutor runs commands with os/exec
type ExecExecutor struct{}

// NewExecExecutor creates an executor backed by os/exec
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// LookPath searches for an executable in PATH
func (e *ExecExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes the request
func (e *ExecExecutor) Run(ctx context.Context, req Request) (Result, error) {
	if req.Name == "" {
		return Result{}, fmt.Errorf("command name is required")
	}

	runCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	tail := req.TailBytes
	if tail <= 0 {
		tail = DefaultTailBytes
	}
	stdout := NewTailBuffer(tail)
	stderr := NewTailBuffer(tail)

	cmd := exec.CommandContext(runCtx, req.Name, req.Args...)
	cmd.Dir = req.Dir
	if len(req.Env) > 0 {
		cmd.Env = append(os.Environ(), req.Env...)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode:        -1,
		Elapsed:         time.Since(start),
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		StdoutTruncated: stdout.Dropped(),
		StderrTruncated: stderr.Dropped(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	// The parent context wins over our own deadline: an interrupt is not a timeout.
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if req.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		return res, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			res.StartErr = err
		}
	}
	return res, nil
}
