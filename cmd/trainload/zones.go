// ABOUTME: CLI commands for heart-rate and speed zones.
// ABOUTME: Shows zone boundaries and weekly running distance per speed zone.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/trainload/internal/zones"
)

var zonesCmd = &cobra.Command{
	Use:     "zones",
	Aliases: []string{"z"},
	Short:   "Zone boundaries and weekly speed-zone volume",
}

var zonesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show heart-rate and speed zone boundaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		faint := color.New(color.Faint)
		fmt.Println(faint.Sprintf("%s %s %s %s", padRight("zone", 18), padRight("weight", 7), padRight("heart rate", 14), "speed"))
		for _, z := range zones.All() {
			i := z.Index()
			fmt.Printf("%s %s %s %s\n",
				padRight(z.Label(), 18),
				padRight(fmt.Sprintf("x%.0f", z.Weight()), 7),
				padRight(fmt.Sprintf("%.0f-%.0f bpm", zones.HeartRateBins[i], zones.HeartRateBins[i+1]), 14),
				fmt.Sprintf("%.0f-%.0f km/h", zones.SpeedBins[i], zones.SpeedBins[i+1]))
		}
		return nil
	},
}

var zonesWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Running distance per speed zone, last 10 weeks",
	Long: `Show running distance per speed zone for each Monday-start week of the
last 70 days, most recent ten weeks.

Distance per sample is the change in the activity's cumulative distance since
the previous sample, classified by that sample's speed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		weeks, err := queries.WeeklySpeedZones(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to compute speed zones: %w", err)
		}
		if len(weeks) == 0 {
			fmt.Println("No running samples in the last 70 days.")
			return nil
		}

		faint := color.New(color.Faint)
		header := padRight("week", 10)
		for _, z := range zones.All() {
			header += " " + padRight(fmt.Sprintf("Z%d", z.Index()+1), 6)
		}
		fmt.Println(faint.Sprint(header + " total"))

		for _, w := range weeks {
			line := faint.Sprint(w.WeekStart)
			for _, zd := range w.Zones {
				line += " " + padRight(fmt.Sprintf("%.1f", zd.DistanceKm), 6)
			}
			fmt.Printf("%s %s\n", line, color.GreenString("%.1f km", w.TotalKm))
		}
		return nil
	},
}

func init() {
	zonesCmd.AddCommand(zonesShowCmd, zonesWeeklyCmd)
	rootCmd.AddCommand(zonesCmd)
}
