package cmd

import (
	"errors"
	"fmt"

	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/gnzdotmx/climateflow/internal/workflow"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the outcome of the latest run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		state, path, err := workflow.LatestRunState(logDir(cfg))
		if errors.Is(err, workflow.ErrNoRunState) {
			utils.LogInfo("No previous run found in %s", logDir(cfg))
			return nil
		}
		if err != nil {
			return err
		}

		console := utils.Std()
		console.Header(state.Title)
		console.Plain("Run:     %s", utils.Highlight(state.ID))
		console.Plain("State:   %s", path)
		console.Plain("Started: %s", state.StartedAt.Format("2006-01-02 15:04:05"))
		if !state.FinishedAt.IsZero() {
			console.Plain("Ended:   %s", state.FinishedAt.Format("2006-01-02 15:04:05"))
		}
		console.Plain("Status:  %s", runStatusText(state.Status))
		if state.StartStep != "" {
			console.Plain("Started at step: %s", state.StartStep)
		}
		if state.Error != "" {
			console.Plain("Error:   %s", utils.Error(state.Error))
		}

		console.Plain("")
		for _, s := range state.Steps {
			line := fmt.Sprintf("%d. %-40s %s", s.Number, s.Name, stepStatusText(s.Status))
			if s.Elapsed != "" {
				line += " (" + s.Elapsed + ")"
			}
			console.Plain("%s", line)
			if s.Reason != "" {
				console.Plain("   %s", s.Reason)
			}
		}

		if len(state.History) > 0 {
			console.Verbose("History:")
			for _, e := range state.History {
				console.Verbose("%s [%s] %s %s", e.Timestamp.Format("15:04:05"), e.Type, e.Step, e.Message)
			}
		}
		return nil
	},
}

func runStatusText(s workflow.RunStatus) string {
	switch s {
	case workflow.RunSucceeded:
		return utils.Success(string(s))
	case workflow.RunFailed:
		return utils.Error(string(s))
	case workflow.RunInterrupted:
		return utils.Warning(string(s))
	default:
		return utils.Info(string(s))
	}
}

func stepStatusText(s workflow.StepStatus) string {
	switch s {
	case workflow.StepSucceeded:
		return utils.Success(string(s))
	case workflow.StepFailed:
		return utils.Error(string(s))
	case workflow.StepSkipped:
		return utils.Debug(string(s))
	default:
		return string(s)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
