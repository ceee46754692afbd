// ABOUTME: CLI commands for exporting training data.
// ABOUTME: JSON/YAML backups and per-activity sample files in parquet or CSV.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/samplefile"
)

var (
	exportOutput string

	samplesFormat string
	samplesOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export training data",
	Long: `Export training data in various formats.

FORMATS:

  json       Full JSON export (suitable for 'trainload restore')
  yaml       YAML export grouped by sport (human-readable)

Per-second samples are exported per activity with 'trainload export samples'.

EXAMPLES:

  trainload export json                    # Export all data as JSON
  trainload export json -o backup.json     # Save to file
  trainload export yaml`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = db.ExportJSON(cmd.Context())
		case "yaml":
			data, err = db.ExportYAML(cmd.Context())
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var exportSamplesCmd = &cobra.Command{
	Use:   "samples <activity_id>",
	Short: "Export one activity's per-second samples",
	Long: `Export the per-second samples of one activity.

FORMATS:

  parquet    Snappy-compressed parquet (default, requires --output)
  csv        Comma-separated with a header row; stdout unless --output

EXAMPLES:

  trainload export samples 20250309070503 -o run.parquet
  trainload export samples 20250309070503 --format csv > run.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid activity id: %s", args[0])
		}
		if _, err := models.ActivityIDTime(id); err != nil {
			return fmt.Errorf("invalid activity id: %w", err)
		}
		format, err := samplefile.ParseFormat(samplesFormat)
		if err != nil {
			return err
		}
		if format == samplefile.FormatParquet && samplesOutput == "" {
			return fmt.Errorf("parquet export requires --output")
		}

		exists, err := db.ActivityExists(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to look up activity: %w", err)
		}
		if !exists {
			return fmt.Errorf("activity not found: %d", id)
		}

		samples, err := db.ListSamples(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to list samples: %w", err)
		}

		switch {
		case format == samplefile.FormatParquet:
			err = samplefile.WriteParquet(samplesOutput, samples)
		case samplesOutput == "":
			return samplefile.WriteCSV(os.Stdout, samples)
		default:
			err = writeCSVFile(samplesOutput, samples)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		color.Green("✓ Exported %d samples to %s", len(samples), samplesOutput)
		return nil
	},
}

func writeCSVFile(path string, samples []models.Sample) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := samplefile.WriteCSV(f, samples); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportSamplesCmd.Flags().StringVarP(&samplesFormat, "format", "f", samplefile.FormatParquet, "parquet or csv")
	exportSamplesCmd.Flags().StringVarP(&samplesOutput, "output", "o", "", "output file")
	exportCmd.AddCommand(exportSamplesCmd)
	rootCmd.AddCommand(exportCmd)
}
