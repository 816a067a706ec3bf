package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gnzdotmx/climateflow/internal/command"
	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gnzdotmx/climateflow/internal/logging"
	"github.com/gnzdotmx/climateflow/internal/mod"
	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/gnzdotmx/climateflow/internal/validator"
	"github.com/pkg/errors"
)

const timestampLayout = "2006-01-02 15:04:05"

// Option configures a Runner
type Option func(*Runner)

// WithStartAt starts the run at the step matching ref (name, number or
// target); earlier steps are marked skipped
func WithStartAt(ref string) Option {
	return func(r *Runner) { r.startAt = ref }
}

// WithResume starts the run at the first step the latest recorded run did not
// complete, or whose outputs have since disappeared
func WithResume() Option {
	return func(r *Runner) { r.resume = true }
}

// WithPrerequisites replaces the default prerequisite battery
func WithPrerequisites(checks []validator.Check) Option {
	return func(r *Runner) { r.prereqs = checks }
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithRegistry replaces the built-in step kinds
func WithRegistry(kinds *mod.ModuleRegistry) Option {
	return func(r *Runner) { r.kinds = kinds }
}

// Runner executes the configured pipeline
type Runner struct {
	cfg      config.Config
	exec     command.Executor
	console  *utils.Console
	logger   *logging.Logger
	prompter validator.Prompter

	startAt string
	resume  bool
	prereqs []validator.Check
	kinds   *mod.ModuleRegistry
	now     func() time.Time
}

// NewRunner creates a runner for cfg. A nil console or logger discards output;
// a nil prompter declines every manual-input warning.
func NewRunner(cfg config.Config, exec command.Executor, console *utils.Console, logger *logging.Logger, prompter validator.Prompter, opts ...Option) *Runner {
	if console == nil {
		console = utils.DiscardConsole()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	r := &Runner{
		cfg:      cfg,
		exec:     exec,
		console:  console,
		logger:   logger,
		prompter: prompter,
		kinds:    mod.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.prereqs == nil {
		r.prereqs = prerequisites(cfg, exec, r.kinds)
	}
	return r
}

// LogDir returns the directory holding run state files and the run log
func (r *Runner) LogDir() string {
	return filepath.Join(r.cfg.Root, r.cfg.LogDir)
}

// Run creates the directory layout, passes both gates, runs every step in
// order and verifies the declared outputs. It stops at the first step that
// does not succeed. The report is returned even when err is not nil.
func (r *Runner) Run(ctx context.Context) (report *Report, err error) {
	first, err := r.startIndex()
	if err != nil {
		return nil, err
	}

	start := r.now()
	state := NewRunState(r.cfg.Title, r.cfg.Steps, start)
	report = newReport(state.ID, r.cfg.Steps, start)
	report.StatePath = StatePath(r.LogDir(), start)
	if first > 0 && first < len(r.cfg.Steps) {
		state.StartStep = r.cfg.Steps[first].Name
	}
	// steps before the start are settled ahead of the gates, so a run stopped
	// at a gate still records them as skipped
	for i := 0; i < first && i < len(report.Results); i++ {
		report.Results[i].settle(StepSkipped, "", "before the start step")
		state.Record(report.Results[i])
	}
	log := r.logger.WithRun(state.ID)

	r.console.Header(r.cfg.Title)
	r.console.Plain("Automated Workflow Execution")
	r.console.Plain("Started: %s", start.Format(timestampLayout))
	log.Info("run started", "title", r.cfg.Title, "steps", len(r.cfg.Steps), "start_step", state.StartStep)

	defer func() {
		report.FinishedAt = r.now()
		r.finish(state, report, err, log)
	}()

	if err := utils.EnsureDirs(r.cfg.Root, r.cfg.Directories); err != nil {
		return report, errors.Wrap(err, "failed to create directories")
	}
	r.console.Success("Directories created/verified")

	if err := r.prerequisiteGate(ctx, report, log); err != nil {
		return report, err
	}
	if err := r.manualGate(ctx, report, log); err != nil {
		return report, err
	}

	r.console.Header("Executing Notebooks")
	for i, step := range r.cfg.Steps {
		res := &report.Results[i]
		if i < first {
			r.console.Info("[Step %d] %s skipped", step.Number, step.Description)
			continue
		}
		if ctx.Err() != nil {
			return report, errors.Wrapf(ErrOperatorInterrupted, "before step %d", step.Number)
		}

		r.console.Step(step.Number, step.Description)
		state.AddEvent(step.Name, "started", fmt.Sprintf("Started %s", step.Target))
		stepLog := log.WithStep(step.Number, step.Name)
		stepLog.Info("step started", "target", step.Target)

		*res = r.RunStep(ctx, step)

		state.Record(*res)
		stepLog.Info("step finished",
			"status", res.Status,
			"failure", res.Failure,
			"exit_code", res.ExitCode,
			"elapsed", res.Elapsed.String(),
		)
		r.reportStep(*res)

		if !res.Succeeded() {
			state.AddEvent(step.Name, "failed", res.Reason)
			r.saveState(state, report.StatePath)
			if res.Failure != FailureInterrupted {
				r.console.Error("Workflow stopped due to error in %s", step.Target)
				r.console.Plain("Check the error messages above and fix the issue.")
				r.console.Plain("When ready, run again: this step and every step after it will be redone. Use --resume to skip the steps that already completed.")
			}
			return report, newStepError(*res)
		}
		state.AddEvent(step.Name, "completed", fmt.Sprintf("Completed in %s", res.Elapsed.Round(time.Millisecond)))
		r.saveState(state, report.StatePath)
		r.console.Plain("")
	}

	outputs, err := r.Verify()
	report.Outputs = outputs
	if err != nil {
		return report, err
	}

	r.console.Header("Workflow Complete!")
	if skipped := report.Count(StepSkipped); skipped > 0 {
		r.console.Success("%d steps executed successfully, %d skipped", report.Count(StepSucceeded), skipped)
	} else {
		r.console.Success("All %d steps executed successfully", report.Count(StepSucceeded))
	}
	r.console.Success("All expected output files created")
	r.console.Plain("\nCompleted: %s", r.now().Format(timestampLayout))
	r.console.Plain("\n%s", utils.BoldText("✓ Analysis pipeline completed successfully!", utils.GreenColor))
	if r.cfg.FinalDataset != "" {
		r.console.Plain("%s", utils.ColoredText("Final dataset: "+r.cfg.FinalDataset, utils.GreenColor))
	}
	return report, nil
}

// Validate runs both gates without creating anything, prompting or running steps
func (r *Runner) Validate(ctx context.Context) (*Report, error) {
	report := newReport("", r.cfg.Steps, r.now())
	log := r.logger.With("command", "validate")

	if err := r.prerequisiteGate(ctx, report, log); err != nil {
		return report, err
	}

	r.console.Header("Checking Manual Prerequisites")
	report.ManualInputs = validator.NewManualGate(r.cfg.Root, r.cfg.ManualInputs, nil).Inspect(ctx)
	r.printDiagnostics(report.ManualInputs)
	if n := validator.CountWarnings(report.ManualInputs); n > 0 {
		return report, errors.Wrapf(ErrManualInputMissing, "%d warning(s)", n)
	}
	return report, nil
}

// RunStep checks the step's entry point exists and runs it. The result is
// always terminal.
func (r *Runner) RunStep(ctx context.Context, step Step) (res RunResult) {
	res = newRunResult(step)
	res.StartedAt = r.now()
	defer func() { res.FinishedAt = r.now() }()

	m, err := r.kinds.Get(step.Kind)
	if err != nil {
		res.settle(StepFailed, FailurePrecondition, err.Error())
		return res
	}
	if !utils.FileExists(filepath.Join(r.cfg.Root, step.Target)) {
		res.settle(StepFailed, FailurePrecondition, fmt.Sprintf("%s not found: %s", m.Noun(), step.Target))
		return res
	}

	req := r.stepRequest(step, m)
	r.console.Plain("   Executing: %s", step.Target)
	r.console.Debug("%s %v", req.Name, req.Args)

	out, err := r.exec.Run(ctx, req)
	res.ExitCode = out.ExitCode
	res.Elapsed = out.Elapsed
	res.Stdout = out.Stdout
	res.Stderr = out.Stderr
	res.StderrDropped = out.StderrTruncated

	switch {
	case err != nil && ctx.Err() != nil:
		res.settle(StepFailed, FailureInterrupted, fmt.Sprintf("interrupted after %.1f seconds", out.Elapsed.Seconds()))
	case err != nil:
		res.settle(StepFailed, FailureExecution, err.Error())
	case out.TimedOut:
		res.settle(StepFailed, FailureTimedOut, fmt.Sprintf("%s execution timed out (>%s)", m.Noun(), req.Timeout))
	case out.StartErr != nil:
		res.settle(StepFailed, FailureExecution, fmt.Sprintf("could not start %s: %v", req.Name, out.StartErr))
	case out.ExitCode != 0:
		res.settle(StepFailed, FailureExecution, fmt.Sprintf("Failed with return code %d", out.ExitCode))
	default:
		res.settle(StepSucceeded, "", "")
	}
	return res
}

// Verify checks every declared output and prints one line per artifact
func (r *Runner) Verify() ([]OutputStatus, error) {
	r.console.Header("Verifying Outputs")

	outputs, ok := VerifyOutputs(r.cfg.Root, r.cfg.ExpectedOutputs())
	missing := 0
	for _, o := range outputs {
		switch {
		case !o.Present:
			missing++
			r.console.Error("%s: %s - NOT FOUND", o.Artifact.Description, o.Artifact.Path)
		case len(o.Files) > 1:
			r.console.Success("%s: %s (%d files, %s)", o.Artifact.Description, o.Artifact.Path, len(o.Files), utils.HumanSize(o.Size))
		default:
			r.console.Success("%s: %s (%s)", o.Artifact.Description, o.Files[0], utils.HumanSize(o.Size))
		}
	}
	if !ok {
		r.console.Warning("Some output files are missing. Check notebook execution above.")
		return outputs, errors.Wrapf(ErrOutputVerificationFailed, "%d of %d expected outputs missing", missing, len(outputs))
	}
	return outputs, nil
}

func (r *Runner) stepRequest(step Step, m mod.Module) command.Request {
	return command.Request{
		Name:      r.cfg.Interpreter,
		Args:      m.Args(step.Target, mod.Params{CellTimeout: r.cfg.Timeouts.Cell}),
		Dir:       r.cfg.Root,
		Timeout:   r.cfg.StepTimeout(step),
		TailBytes: max(command.DefaultTailBytes, r.cfg.ExcerptBytes),
	}
}

func (r *Runner) prerequisiteGate(ctx context.Context, report *Report, log *logging.Logger) error {
	r.console.Header("Checking Prerequisites")

	ok, diags := validator.Evaluate(ctx, r.prereqs)
	report.Prerequisites = diags
	if ctx.Err() != nil {
		return errors.Wrap(ErrOperatorInterrupted, "during prerequisite checks")
	}
	r.printDiagnostics(diags)
	for _, d := range diags {
		log.Info("prerequisite checked", "check", d.Name, "status", d.Status, "message", d.Message)
	}

	if !ok {
		r.console.Error("Prerequisite check failed. Please fix issues and try again.")
		failed := 0
		for _, d := range diags {
			if !d.Passed() {
				failed++
			}
		}
		return errors.Wrapf(ErrEnvironmentUnready, "%d of %d checks failed", failed, len(diags))
	}
	return nil
}

func (r *Runner) manualGate(ctx context.Context, report *Report, log *logging.Logger) error {
	r.console.Header("Checking Manual Prerequisites")

	gate := validator.NewManualGate(r.cfg.Root, r.cfg.ManualInputs, r.prompter)
	diags := gate.Inspect(ctx)
	report.ManualInputs = diags
	r.printDiagnostics(diags)
	for _, d := range diags {
		log.Info("manual input checked", "input", d.Name, "status", d.Status)
	}

	proceed, err := gate.Decide(ctx, diags)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ErrOperatorInterrupted, "while waiting for confirmation")
		}
		return errors.Wrap(err, "failed to read confirmation")
	}
	if !proceed {
		r.console.Error("Manual prerequisites not complete. Aborting.")
		return errors.Wrapf(ErrManualInputMissing, "%d warning(s) not accepted", validator.CountWarnings(diags))
	}
	if n := validator.CountWarnings(diags); n > 0 {
		log.Warn("manual input warnings accepted", "warnings", n)
	}
	return nil
}

func (r *Runner) printDiagnostics(diags []validator.Diagnostic) {
	for _, d := range diags {
		switch d.Status {
		case validator.StatusPass:
			r.console.Success("%s", d.Message)
		case validator.StatusWarn:
			r.console.Warning("%s", d.Message)
		default:
			r.console.Error("%s", d.Message)
		}
		for _, line := range d.Details {
			r.console.Plain("   %s", line)
		}
		for _, note := range d.Notes {
			r.console.Warning("%s", note)
		}
	}
}

func (r *Runner) reportStep(res RunResult) {
	switch {
	case res.Succeeded():
		r.console.Success("Completed in %.1f seconds", res.Elapsed.Seconds())
		if res.Stdout != "" {
			r.console.Debug("%s", res.Stdout)
		}
	case res.Failure == FailureExecution && res.Stderr != "":
		r.console.Error("%s", res.Reason)
		r.console.Plain("%s", utils.Error("Error output:"))
		r.console.Plain("%s", utils.TailExcerpt(res.Stderr, r.cfg.ExcerptBytes, res.StderrDropped))
	default:
		r.console.Error("%s", res.Reason)
	}
}

func (r *Runner) startIndex() (int, error) {
	if r.startAt != "" {
		i := r.cfg.StepIndex(r.startAt)
		if i < 0 {
			return 0, errors.Wrapf(ErrUnknownStep, "%q", r.startAt)
		}
		return i, nil
	}
	if !r.resume {
		return 0, nil
	}

	prev, path, err := LatestRunState(r.LogDir())
	if errors.Is(err, ErrNoRunState) {
		r.console.Info("No previous run found; starting from the first step")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	i := ResumeIndex(r.cfg, prev)
	if i < len(r.cfg.Steps) {
		r.console.Info("Resuming from step %d (%s) using %s", r.cfg.Steps[i].Number, r.cfg.Steps[i].Name, path)
	} else {
		r.console.Info("Every step completed in %s; only outputs will be verified", path)
	}
	return i, nil
}

// ResumeIndex returns the index of the first step that prev did not complete
// or whose declared outputs are now missing. It returns len(cfg.Steps) when
// nothing needs to run.
func ResumeIndex(cfg config.Config, prev *RunState) int {
	for i, s := range cfg.Steps {
		switch prev.StepStatus(s.Name) {
		case StepSucceeded, StepSkipped:
		default:
			return i
		}
		if _, ok := VerifyOutputs(cfg.Root, s.Outputs); !ok {
			return i
		}
	}
	return len(cfg.Steps)
}

func (r *Runner) finish(state *RunState, report *Report, err error, log *logging.Logger) {
	status := RunSucceeded
	switch {
	case err == nil:
	case errors.Is(err, ErrOperatorInterrupted):
		status = RunInterrupted
	default:
		status = RunFailed
	}
	state.Finish(status, err, report.FinishedAt)
	r.saveState(state, report.StatePath)

	if err != nil {
		log.Error("run finished", "status", status, "error", err.Error())
		return
	}
	log.Info("run finished", "status", status, "elapsed", report.FinishedAt.Sub(report.StartedAt).String())
}

func (r *Runner) saveState(state *RunState, path string) {
	if err := state.Save(path); err != nil {
		r.console.Warning("could not save run state: %v", err)
	}
}
