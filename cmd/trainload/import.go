// ABOUTME: CLI command for importing FIT activities and sleep summaries.
// ABOUTME: Runs the import coordinator and prints per-kind counts.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/trainload/internal/fitfile"
	"github.com/harperreed/trainload/internal/importer"
	"github.com/harperreed/trainload/internal/observability"
)

var (
	importActivityDir string
	importSleepDir    string
	importMetricsFile string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import *.fit and sleep_*.json files",
	Long: `Import every activity and sleep file from the source directories.

Files already stored are skipped, so re-running is safe. A file that cannot be
parsed is logged and counted as failed; the rest of the run continues.

SOURCES:

  Activities   *.fit (any case) in --activity-dir or the configured activity_dir
  Sleep        sleep_*.json in --sleep-dir or the configured sleep_dir

METRICS:

  --metrics-file writes Prometheus text format for the node_exporter
  textfile collector.

EXAMPLES:

  trainload import
  trainload import --activity-dir ~/Downloads/fit
  trainload import --metrics-file /var/lib/node_exporter/trainload.prom`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		activityDir := cfg.GetActivityDir()
		if importActivityDir != "" {
			activityDir = importActivityDir
		}
		sleepDir := cfg.GetSleepDir()
		if importSleepDir != "" {
			sleepDir = importSleepDir
		}

		aliases, err := cfg.AliasTable()
		if err != nil {
			return fmt.Errorf("failed to load field aliases: %w", err)
		}

		metrics := observability.NewImportMetrics()
		im := importer.New(db, importer.Options{
			ActivityDir: activityDir,
			SleepDir:    sleepDir,
			Extractor:   fitfile.NewExtractor(aliases, logger),
			Logger:      logger,
			Metrics:     metrics,
			Cache:       queries,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sum, runErr := im.Run(ctx)
		printImportSummary(sum)

		total, err := db.CountActivities(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count activities: %w", err)
		}
		fmt.Printf("%s %d activities stored\n", padRight("total", 11), total)

		if importMetricsFile != "" {
			if err := metrics.WriteTextfile(importMetricsFile); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
		}
		if runErr != nil {
			return fmt.Errorf("import interrupted: %w", runErr)
		}
		return nil
	},
}

func printImportSummary(sum *importer.Summary) {
	if sum == nil {
		return
	}
	faint := color.New(color.Faint)
	row := func(label string, c importer.Counts) {
		failed := fmt.Sprintf("%d failed", c.Failed)
		if c.Failed > 0 {
			failed = color.RedString(failed)
		}
		fmt.Printf("%s %s, %s, %s\n",
			padRight(label, 11),
			color.GreenString("%d imported", c.Imported),
			faint.Sprintf("%d skipped", c.Skipped),
			failed)
	}
	row("activities", sum.Activities)
	row("sleep", sum.Sleep)
}

func init() {
	importCmd.Flags().StringVar(&importActivityDir, "activity-dir", "", "override the activity directory")
	importCmd.Flags().StringVar(&importSleepDir, "sleep-dir", "", "override the sleep directory")
	importCmd.Flags().StringVar(&importMetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	rootCmd.AddCommand(importCmd)
}
