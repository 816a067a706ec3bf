// Package validator holds the gates evaluated before any pipeline step runs.
package validator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Status is the outcome of a single check
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
)

// maxConcurrentChecks bounds how many checks are probed at once
const maxConcurrentChecks = 4

// Diagnostic is the structured result of a check
type Diagnostic struct {
	Name    string
	Status  Status
	Message string
	// Details are extra lines shown under the message (missing items, hints)
	Details []string
	// Notes are informational lines that never affect the status
	Notes []string
}

// Passed reports whether the check passed
func (d Diagnostic) Passed() bool {
	return d.Status == StatusPass
}

// Check is a named predicate over the environment
type Check struct {
	Name string
	Run  func(ctx context.Context) Diagnostic
}

// Pass builds a passing diagnostic
func Pass(name, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Name: name, Status: StatusPass, Message: fmt.Sprintf(format, args...)}
}

// Fail builds a failing diagnostic
func Fail(name, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Name: name, Status: StatusFail, Message: fmt.Sprintf(format, args...)}
}

// Warn builds a warning diagnostic
func Warn(name, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Name: name, Status: StatusWarn, Message: fmt.Sprintf(format, args...)}
}

// Evaluate runs every check and returns the diagnostics in declaration order.
// ok is false if any check did not pass. A check that panics is reported as
// failed; it never aborts the evaluation of the others.
func Evaluate(ctx context.Context, checks []Check) (bool, []Diagnostic) {
	diags := make([]Diagnostic, len(checks))

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentChecks)
	for i, c := range checks {
		i, c := i, c
		g.Go(func() error {
			diags[i] = runIsolated(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	ok := true
	for _, d := range diags {
		if !d.Passed() {
			ok = false
		}
	}
	return ok, diags
}

// runIsolated runs one check, converting panics and cancellation into failures
func runIsolated(ctx context.Context, c Check) (d Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			d = Diagnostic{
				Name:    c.Name,
				Status:  StatusFail,
				Message: fmt.Sprintf("check crashed: %v", r),
			}
		}
	}()

	if c.Run == nil {
		return Fail(c.Name, "check has no implementation")
	}
	if err := ctx.Err(); err != nil {
		return Fail(c.Name, "check not run: %v", err)
	}

	d = c.Run(ctx)
	if d.Name == "" {
		d.Name = c.Name
	}
	if d.Status == "" {
		d.Status = StatusFail
	}
	return d
}
