// ABOUTME: Named date-range presets and range summaries.
// ABOUTME: Presets resolve relative to a given day; weeks start on Monday.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/stress"
)

// Period preset names.
const (
	PeriodThisWeek  = "this-week"
	PeriodLastWeek  = "last-week"
	PeriodThisMonth = "this-month"
	PeriodLastMonth = "last-month"
	PeriodYear      = "year"
)

// Periods lists the presets in display order.
func Periods() []string {
	return []string{PeriodThisWeek, PeriodLastWeek, PeriodThisMonth, PeriodLastMonth, PeriodYear}
}

// PeriodRange resolves a preset to an inclusive [from, to] date range.
// The year preset ends today; the others cover whole weeks or months.
func PeriodRange(name string, today time.Time) (time.Time, time.Time, error) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	switch name {
	case PeriodThisWeek:
		from := WeekStart(today)
		return from, from.AddDate(0, 0, 6), nil
	case PeriodLastWeek:
		from := WeekStart(today).AddDate(0, 0, -7)
		return from, from.AddDate(0, 0, 6), nil
	case PeriodThisMonth:
		from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1), nil
	case PeriodLastMonth:
		thisMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return thisMonth.AddDate(0, -1, 0), thisMonth.AddDate(0, 0, -1), nil
	case PeriodYear:
		return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), today, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q (want one of %v)", name, Periods())
	}
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// Summary holds the headline figures for a range.
type Summary struct {
	From          string  `json:"from" yaml:"from"`
	To            string  `json:"to" yaml:"to"`
	DistanceKm    float64 `json:"distance_km" yaml:"distance_km"`
	Sessions      int     `json:"sessions" yaml:"sessions"`
	EffortMinutes float64 `json:"effort_minutes" yaml:"effort_minutes"`
	StressScore   float64 `json:"stress_score" yaml:"stress_score"`
}

// Summarize totals the activities and daily stress of [from, to].
func Summarize(from, to time.Time, activities []*models.Activity, daily []stress.DailyScore) Summary {
	s := Summary{
		From:     from.Format(models.DateLayout),
		To:       to.Format(models.DateLayout),
		Sessions: len(activities),
	}
	for _, a := range activities {
		if a.DistanceM != nil {
			s.DistanceKm += *a.DistanceM / 1000
		}
		if a.TotalTimerTimeS != nil {
			s.EffortMinutes += *a.TotalTimerTimeS / 60
		}
	}
	for _, d := range daily {
		s.StressScore += d.StressScore
	}
	return s
}

// Summary returns the headline figures for [from, to].
func (s *Service) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	activities, err := s.Activities(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	daily, err := s.DailyStress(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(from, to, activities, daily), nil
}

// ResolveRange picks the date range for a request: explicit from and to win,
// otherwise the named period (this-week when empty) relative to today.
func ResolveRange(period, from, to string, today time.Time) (time.Time, time.Time, error) {
	if from != "" || to != "" {
		if from == "" || to == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("both from and to are required for an explicit range")
		}
		f, err := ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		t, err := ParseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if err := checkRange(f, t); err != nil {
			return time.Time{}, time.Time{}, err
		}
		return f, t, nil
	}
	if period == "" {
		period = PeriodThisWeek
	}
	return PeriodRange(period, today)
}
