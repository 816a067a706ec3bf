package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnzdotmx/climateflow/internal/command"
	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gnzdotmx/climateflow/internal/logging"
	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/gnzdotmx/climateflow/internal/validator"
	"github.com/gnzdotmx/climateflow/internal/workflow"
	"golang.org/x/term"
)

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load pipeline configuration: %w", err)
	}
	return cfg, nil
}

func logDir(cfg config.Config) string {
	return filepath.Join(cfg.Root, cfg.LogDir)
}

// newRunner wires the runner with the process-wide console. Only a run opens
// the run log under the log directory; the read-only commands create nothing.
// The returned close function flushes the run log.
func newRunner(cfg config.Config, prompter validator.Prompter, runLog bool, opts ...workflow.Option) (*workflow.Runner, func(), error) {
	logger := logging.NopLogger()
	if runLog {
		var err error
		logger, err = logging.NewLogger(logDir(cfg), logging.LevelForConsole(verbosityLevel))
		if err != nil {
			return nil, nil, err
		}
	}
	closeLog := func() {
		if err := logger.Close(); err != nil {
			utils.LogWarning("%v", err)
		}
	}
	runner := workflow.NewRunner(cfg, command.NewExecExecutor(), utils.Std(), logger, prompter, opts...)
	return runner, closeLog, nil
}

// newPrompter asks on the terminal unless the operator accepted warnings up front
func newPrompter(assumeYes bool) validator.Prompter {
	if assumeYes {
		return validator.AutoPrompter{Answer: true}
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		utils.LogVerbose("stdin is not a terminal; a manual-input confirmation will be read from it")
	}
	return validator.NewStdinPrompter(os.Stdin, os.Stdout)
}

func runPipeline(ctx context.Context, assumeYes bool, opts ...workflow.Option) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner, closeLog, err := newRunner(cfg, newPrompter(assumeYes), true, opts...)
	if err != nil {
		return err
	}
	defer closeLog()

	_, err = runner.Run(ctx)
	return err
}
