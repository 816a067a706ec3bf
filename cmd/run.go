package cmd

import (
	"github.com/gnzdotmx/climateflow/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	startFrom string
	resumeRun bool
	assumeYes bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the notebook pipeline",
	Long: `Execute the pipeline steps in order, halting at the first failure.

--from starts at a given step (name, number or notebook path) and marks the
earlier steps as skipped. --resume starts at the first step the latest run did
not complete, or whose outputs have since gone missing. Output verification
always covers every step.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []workflow.Option
		if startFrom != "" {
			opts = append(opts, workflow.WithStartAt(startFrom))
		}
		if resumeRun {
			opts = append(opts, workflow.WithResume())
		}
		return runPipeline(cmd.Context(), assumeYes, opts...)
	},
}

func init() {
	runCmd.Flags().StringVarP(&startFrom, "from", "f", "", "Start at this step (name, number or notebook path)")
	runCmd.Flags().BoolVarP(&resumeRun, "resume", "r", false, "Resume after the last completed step of the previous run")
	runCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Continue without asking when manual inputs are missing")
	runCmd.MarkFlagsMutuallyExclusive("from", "resume")
	rootCmd.AddCommand(runCmd)
}
