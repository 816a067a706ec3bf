package workflow

import (
	"github.com/gnzdotmx/climateflow/internal/command"
	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gnzdotmx/climateflow/internal/mod"
	"github.com/gnzdotmx/climateflow/internal/validator"
)

// Prerequisites returns the fixed battery of environment checks, in the order
// they are reported
func Prerequisites(cfg config.Config, exec command.Executor) []validator.Check {
	return prerequisites(cfg, exec, mod.Default())
}

func prerequisites(cfg config.Config, exec command.Executor, kinds *mod.ModuleRegistry) []validator.Check {
	timeout := cfg.Timeouts.Check
	checks := []validator.Check{
		validator.RuntimeVersionCheck(exec, cfg.Interpreter, cfg.MinRuntimeVersion, timeout),
		validator.PackagesCheck(exec, cfg.Interpreter, cfg.Packages, cfg.RequirementsFile, timeout),
	}

	stepKinds := make([]string, 0, len(cfg.Steps))
	targets := make([]string, 0, len(cfg.Steps))
	for _, s := range cfg.Steps {
		stepKinds = append(stepKinds, s.Kind)
		targets = append(targets, s.Target)
	}

	// tools of the step kinds in use, e.g. Jupyter and nbconvert for notebooks
	for _, tool := range kinds.Tools(cfg.Interpreter, stepKinds) {
		checks = append(checks, validator.ToolCheck(exec, tool, timeout))
	}

	checks = append(checks,
		validator.FileLayoutCheck(cfg.Root, cfg.RequiredDirs, targets),
		DefinitionCheck(cfg),
	)
	return checks
}
