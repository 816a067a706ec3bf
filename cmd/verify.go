package cmd

import (
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every expected output file exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		runner, closeLog, err := newRunner(cfg, nil, false)
		if err != nil {
			return err
		}
		defer closeLog()

		_, err = runner.Verify()
		return err
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
