package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gnzdotmx/climateflow/internal/utils"
	"github.com/gnzdotmx/climateflow/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	keepLatest    int
	olderThanDays int
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up old run state files",
	Long:  `Remove old run state files from the log directory based on age or count.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if keepLatest <= 0 && olderThanDays <= 0 {
			return fmt.Errorf("one of --keep-latest or --older-than is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := logDir(cfg)

		files, err := workflow.ListStateFiles(dir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			utils.LogInfo("No run state files found in %s.", dir)
			return nil
		}

		toDelete := selectStateFiles(files, keepLatest, olderThanDays, time.Now())
		if len(toDelete) == 0 {
			utils.LogInfo("No state files to delete.")
			return nil
		}

		utils.LogInfo("Found %d state files to delete:", len(toDelete))
		for _, f := range toDelete {
			utils.Std().Plain("- %s", f.Path)
		}

		if cleanupDryRun {
			utils.LogInfo("Dry run - no files were deleted.")
			return nil
		}

		for _, f := range toDelete {
			utils.LogVerbose("Deleting %s...", f.Path)
			if err := os.Remove(f.Path); err != nil {
				utils.LogError("Error deleting %s: %v", f.Path, err)
			}
		}

		utils.LogSuccess("Cleanup completed.")
		return nil
	},
}

// selectStateFiles picks the files to prune. files must be sorted oldest
// first; the newest file is never selected.
func selectStateFiles(files []workflow.StateFile, keep, olderThan int, now time.Time) []workflow.StateFile {
	if len(files) == 0 {
		return nil
	}
	selected := make(map[string]bool)

	if keep > 0 && len(files) > keep {
		for _, f := range files[:len(files)-keep] {
			selected[f.Path] = true
		}
	}

	if olderThan > 0 {
		cutoff := now.AddDate(0, 0, -olderThan)
		for _, f := range files[:len(files)-1] {
			if f.StartedAt.Before(cutoff) {
				selected[f.Path] = true
			}
		}
	}

	var out []workflow.StateFile
	for _, f := range files {
		if selected[f.Path] {
			out = append(out, f)
		}
	}
	return out
}

func init() {
	cleanupCmd.Flags().IntVarP(&keepLatest, "keep-latest", "k", 0, "Keep this many latest state files")
	cleanupCmd.Flags().IntVarP(&olderThanDays, "older-than", "o", 0, "Delete state files older than this many days")
	cleanupCmd.Flags().BoolVarP(&cleanupDryRun, "dry-run", "n", false, "Show what would be deleted without actually deleting")

	rootCmd.AddCommand(cleanupCmd)
}
