package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gnzdotmx/climateflow/internal/config"
	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/gnzdotmx/climateflow/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	graphOutput  string
	graphNoState bool
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the step dependency graph in DOT format",
	Long: `Derive the dependency graph from the declared step inputs and outputs and
write it in Graphviz DOT format. Step vertices are coloured with the outcome
of the latest run unless --no-state is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var statuses map[string]workflow.StepStatus
		if !graphNoState {
			statuses, err = latestStatuses(cfg)
			if err != nil {
				return err
			}
		}

		def, err := workflow.AnalyzeDefinition(cfg, statuses)
		if err != nil {
			return err
		}
		for _, p := range def.Problems {
			utils.LogWarning("%s", p)
		}

		var w io.Writer = cmd.OutOrStdout()
		if graphOutput != "" {
			f, err := os.Create(graphOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", graphOutput, err)
			}
			defer f.Close()
			w = f
		}

		if err := def.WriteDOT(w, cfg.Title); err != nil {
			return err
		}
		if graphOutput != "" {
			utils.LogSuccess("Graph written to %s", graphOutput)
		}
		return nil
	},
}

// latestStatuses returns the step statuses of the latest run, nil if none
func latestStatuses(cfg config.Config) (map[string]workflow.StepStatus, error) {
	state, _, err := workflow.LatestRunState(logDir(cfg))
	if errors.Is(err, workflow.ErrNoRunState) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]workflow.StepStatus, len(cfg.Steps))
	for _, s := range cfg.Steps {
		statuses[s.Name] = state.StepStatus(s.Name)
	}
	return statuses, nil
}

func init() {
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Write the DOT graph to this file instead of stdout")
	graphCmd.Flags().BoolVar(&graphNoState, "no-state", false, "Do not colour steps with the latest run outcome")
	rootCmd.AddCommand(graphCmd)
}
