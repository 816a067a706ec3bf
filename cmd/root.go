package cmd

import (
	"context"

	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// verbosityLevel is the command-line flag for setting the log level
	verbosityLevel string
	// configPath points to an optional pipeline.yaml
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "climateflow",
	Short: "Run the Illinois corn production / NOAA climate notebook pipeline",
	Long: `climateflow checks the environment and the manually supplied inputs, then
executes the analysis notebooks one after another, stopping at the first
failure, and finally verifies every dataset the notebooks should produce.

Run without a subcommand to execute the whole pipeline.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set the global log level based on the flag
		utils.SetLogLevel(utils.LogLevelFromString(verbosityLevel))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd.Context(), false)
	},
}

// Execute runs the CLI; ctx is cancelled on operator interrupt
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&verbosityLevel, "log-level", "l", "normal",
		"Set the logging verbosity level: quiet, normal, verbose, debug")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a pipeline YAML file (default: ./pipeline.yaml if present, else the built-in pipeline)")
}
