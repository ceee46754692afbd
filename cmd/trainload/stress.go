// ABOUTME: CLI commands for training stress and range summaries.
// ABOUTME: Prints daily stress, per-activity zTRIMP detail and headline totals.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/trainload/internal/zones"
)

var (
	stressRange      rangeFlags
	stressActivities bool
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Daily training stress in a date range",
	Long: `Show the daily stress score: the sum over the day's activities of
zTRIMP x perception multiplier.

  RPE     <=4 x0.90   5-6 x1.00   7-8 x1.15   9-10 x1.30
  feel    <=30 +0.10  >=70 -0.10  otherwise +0

Activities without heart rate, RPE or feel are not scored, so days with only
such activities do not appear.

EXAMPLES:

  trainload stress                      # This week, one line per day
  trainload stress --period year
  trainload stress --activities         # Per-activity minutes in each zone`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := stressRange.resolve()
		if err != nil {
			return err
		}

		if stressActivities {
			return printActivityScores(cmd, from, to)
		}

		days, err := queries.DailyStress(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("failed to compute stress: %w", err)
		}
		if len(days) == 0 {
			fmt.Println("No scored activities found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, d := range days {
			fmt.Printf("%s %7.1f %s %s\n",
				faint.Sprint(d.Date),
				d.StressScore,
				color.YellowString(bar(d.StressScore, 10)),
				faint.Sprintf("(%d)", d.Activities))
		}
		return nil
	},
}

func printActivityScores(cmd *cobra.Command, from, to time.Time) error {
	scores, err := queries.ActivityScores(cmd.Context(), from, to)
	if err != nil {
		return fmt.Errorf("failed to compute stress: %w", err)
	}
	if len(scores) == 0 {
		fmt.Println("No scored activities found.")
		return nil
	}

	faint := color.New(color.Faint)
	for _, s := range scores {
		minutes := make([]string, 0, zones.Count)
		for _, z := range zones.All() {
			minutes = append(minutes, fmt.Sprintf("%s %.0f", z, s.Minutes[z]))
		}
		fmt.Printf("%s ztrimp %6.1f x %.3f = %s %s\n",
			faint.Sprint(s.ActivityID),
			s.ZTRIMP,
			s.Multiplier,
			color.YellowString("%.1f", s.StressScore),
			faint.Sprint(strings.Join(minutes, " ")))
	}
	return nil
}

// bar draws one block per unit of scale, capped at 40.
func bar(v, unit float64) string {
	n := int(v / unit)
	if n > 40 {
		n = 40
	}
	if n < 0 {
		n = 0
	}
	return strings.Repeat("▇", n)
}

var summaryRange rangeFlags

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Distance, sessions, effort and stress totals for a date range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := summaryRange.resolve()
		if err != nil {
			return err
		}

		sum, err := queries.Summary(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("failed to summarize: %w", err)
		}

		fmt.Println(renderSummary(sum))
		return nil
	},
}

func init() {
	stressRange.register(stressCmd)
	stressCmd.Flags().BoolVarP(&stressActivities, "activities", "a", false, "show per-activity scores")
	summaryRange.register(summaryCmd)
	rootCmd.AddCommand(stressCmd, summaryCmd)
}
