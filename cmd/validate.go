package cmd

import (
	"fmt"

	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var printConfig bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate environment setup",
	Long: `Run the prerequisite and manual-input checks without creating directories,
prompting or executing any step.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if printConfig {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
		}

		runner, closeLog, err := newRunner(cfg, nil, false)
		if err != nil {
			return err
		}
		defer closeLog()

		if _, err := runner.Validate(cmd.Context()); err != nil {
			return err
		}
		utils.LogSuccess("Environment validation completed successfully")
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&printConfig, "print-config", false, "Print the effective pipeline configuration as YAML")
	rootCmd.AddCommand(validateCmd)
}
