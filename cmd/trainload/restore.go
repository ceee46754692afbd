// ABOUTME: CLI command for restoring a JSON backup.
// ABOUTME: Inserts records missing from the store; existing ones are kept.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <file.json>",
	Short: "Restore data from a JSON export",
	Long: `Restore users, activities, laps and sleep from 'trainload export json'.

Activities and nights that already exist are left untouched, so a restore into
a populated store only adds what is missing. Users are overwritten. Per-second samples are not part of the backup;
re-import the FIT files to restore them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		activities, nights, err := db.ImportJSON(cmd.Context(), raw)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		if activities+nights > 0 {
			queries.Invalidate()
		}

		color.Green("✓ Restored %d activities and %d nights", activities, nights)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
