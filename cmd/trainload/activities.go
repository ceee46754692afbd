// ABOUTME: CLI commands for listing activities and sleep over a date range.
// ABOUTME: Shares the --period/--from/--to range flags with the stress commands.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/query"
)

// rangeFlags holds the date range options of one command.
type rangeFlags struct {
	period string
	from   string
	to     string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&r.period, "period", "p", "",
		"named period: "+strings.Join(query.Periods(), ", ")+" (default this-week)")
	cmd.Flags().StringVar(&r.from, "from", "", "start date YYYY-MM-DD (with --to)")
	cmd.Flags().StringVar(&r.to, "to", "", "end date YYYY-MM-DD, inclusive (with --from)")
}

func (r *rangeFlags) resolve() (time.Time, time.Time, error) {
	return query.ResolveRange(r.period, r.from, r.to, time.Now())
}

func (r *rangeFlags) reset() {
	*r = rangeFlags{}
}

var activitiesRange rangeFlags

var activitiesCmd = &cobra.Command{
	Use:     "activities",
	Aliases: []string{"ls", "list"},
	Short:   "List activities in a date range",
	Long: `List activities started within a date range.

OUTPUT FORMAT:

  Each line shows: ID  START  SPORT  DISTANCE  DURATION  AVG HR  RPE/FEEL

EXAMPLES:

  trainload activities                          # This week
  trainload activities --period last-month
  trainload activities --from 2025-03-01 --to 2025-03-31`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := activitiesRange.resolve()
		if err != nil {
			return err
		}

		activities, err := queries.Activities(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("failed to list activities: %w", err)
		}
		if len(activities) == 0 {
			fmt.Println("No activities found.")
			return nil
		}

		for _, a := range activities {
			samples, err := db.CountSamples(cmd.Context(), a.ID)
			if err != nil {
				return fmt.Errorf("failed to count samples: %w", err)
			}
			fmt.Println(activityLine(a, samples))
		}
		return nil
	},
}

func activityLine(a *models.Activity, samples int) string {
	faint := color.New(color.Faint)
	perception := ""
	if a.RPE != nil && a.Feel != nil {
		perception = faint.Sprintf(" rpe %.0f feel %.0f", *a.RPE, *a.Feel)
	}
	return fmt.Sprintf("%s %s %s %s %s %s %s%s",
		faint.Sprint(a.ID),
		faint.Sprint(a.StartTime.Format("2006-01-02 15:04")),
		padRight(truncate(a.SportName(), 14), 14),
		padRight(formatKm(a.DistanceM), 9),
		padRight(formatMinutes(a.TotalTimerTimeS), 8),
		padRight(formatHR(a.AvgHR), 7),
		padRight(fmt.Sprintf("%d samples", samples), 12),
		perception)
}

var sleepRange rangeFlags

var sleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "List nightly sleep summaries in a date range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := sleepRange.resolve()
		if err != nil {
			return err
		}

		nights, err := queries.Sleep(cmd.Context(), from, to)
		if err != nil {
			return fmt.Errorf("failed to list sleep: %w", err)
		}
		if len(nights) == 0 {
			fmt.Println("No sleep found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range nights {
			score := "-"
			if s.OverallScore != nil {
				score = fmt.Sprintf("%d", *s.OverallScore)
			}
			fmt.Printf("%s %s %s\n",
				faint.Sprint(s.ID),
				padRight(formatHours(s.TotalSleepSeconds), 7),
				faint.Sprintf("score %s", score))
		}
		return nil
	},
}

func formatKm(m *float64) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f km", *m/1000)
}

func formatMinutes(s *float64) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f min", *s/60)
}

func formatHR(hr *float64) string {
	if hr == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f bpm", *hr)
}

func formatHours(s *int) string {
	if s == nil {
		return "-"
	}
	d := time.Duration(*s) * time.Second
	return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	activitiesRange.register(activitiesCmd)
	sleepRange.register(sleepCmd)
	rootCmd.AddCommand(activitiesCmd, sleepCmd)
}
