package validator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gnzdotmx/climateflow/internal/utils"
)

// Prompter asks the operator a yes/no question
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ManualGate checks inputs a human must supply. Unlike the prerequisite gate
// its warnings can be accepted by the operator.
type ManualGate struct {
	Checks   []Check
	Prompter Prompter
}

// NewManualGate builds the gate for the configured manual inputs
func NewManualGate(root string, inputs []config.ManualInputConfig, prompter Prompter) *ManualGate {
	checks := make([]Check, 0, len(inputs))
	for _, in := range inputs {
		checks = append(checks, ManualInputCheck(root, in))
	}
	return &ManualGate{Checks: checks, Prompter: prompter}
}

// Inspect evaluates every manual check without asking anything
func (g *ManualGate) Inspect(ctx context.Context) []Diagnostic {
	_, diags := Evaluate(ctx, g.Checks)
	return diags
}

// Decide returns true when there are no warnings, otherwise asks the operator
// once whether to continue anyway.
func (g *ManualGate) Decide(ctx context.Context, diags []Diagnostic) (bool, error) {
	warnings := CountWarnings(diags)
	if warnings == 0 {
		return true, nil
	}
	if g.Prompter == nil {
		return false, nil
	}
	return g.Prompter.Confirm(ctx, fmt.Sprintf("Found %d warning(s). Continue anyway? (y/N): ", warnings))
}

// Check runs Inspect then Decide
func (g *ManualGate) Check(ctx context.Context) (bool, []Diagnostic, error) {
	diags := g.Inspect(ctx)
	proceed, err := g.Decide(ctx, diags)
	return proceed, diags, err
}

// CountWarnings counts diagnostics that did not pass
func CountWarnings(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if !d.Passed() {
			n++
		}
	}
	return n
}

// ManualInputCheck checks one manual input; absence is a warning, never a failure
func ManualInputCheck(root string, in config.ManualInputConfig) Check {
	return Check{
		Name: in.Name,
		Run: func(ctx context.Context) Diagnostic {
			var d Diagnostic
			switch in.Kind {
			case config.ManualEnv:
				d = envInput(in)
			default:
				d = fileInput(root, in)
			}
			if d.Passed() && in.Reminder != "" {
				d.Notes = append(d.Notes, in.Reminder)
			}
			return d
		},
	}
}

func fileInput(root string, in config.ManualInputConfig) Diagnostic {
	full := filepath.Join(root, in.Path)
	size, err := utils.FileSize(full)
	if err != nil || !utils.FileExists(full) {
		d := Warn(in.Name, "%s", describe(in, "not found"))
		d.Details = append(d.Details, "File: "+in.Path)
		return withPointers(d, in)
	}
	return Pass(in.Name, "%s found (%s)", in.Name, utils.HumanSize(size))
}

func envInput(in config.ManualInputConfig) Diagnostic {
	if v, ok := os.LookupEnv(in.EnvVar); !ok || strings.TrimSpace(v) == "" {
		d := Warn(in.Name, "%s", describe(in, "is not set"))
		d.Details = append(d.Details, "Variable: "+in.EnvVar)
		return withPointers(d, in)
	}
	// Never print the value
	return Pass(in.Name, "%s is set", in.EnvVar)
}

func describe(in config.ManualInputConfig, fallback string) string {
	if in.Description != "" {
		return in.Description
	}
	return in.Name + " " + fallback
}

func withPointers(d Diagnostic, in config.ManualInputConfig) Diagnostic {
	if in.Documentation != "" {
		d.Details = append(d.Details, "Instructions: "+in.Documentation)
	}
	if in.Link != "" {
		d.Details = append(d.Details, "Direct link: "+in.Link)
	}
	return d
}

// StdinPrompter reads the answer from a line of input
type StdinPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewStdinPrompter creates a prompter reading from in and writing to out
func NewStdinPrompter(in io.Reader, out io.Writer) *StdinPrompter {
	return &StdinPrompter{In: in, Out: out}
}

// Confirm prints the question and waits for one line. Only "y" or "yes"
// (any case) confirm; empty input or end of input declines.
func (p *StdinPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	_, _ = fmt.Fprint(p.Out, "\n"+utils.Warning(question))

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("failed to read answer: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

// AutoPrompter answers every question without asking
type AutoPrompter struct {
	Answer bool
}

// Confirm returns the fixed answer
func (p AutoPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	return p.Answer, nil
}
