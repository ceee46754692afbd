// ABOUTME: Activity, Lap and Sample models extracted from FIT recordings.
// ABOUTME: Optional attributes are pointers so absent values never read as zero.
package models

import (
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the storage format for all instants (UTC, second precision).
// Lexical order matches chronological order, which range filters rely on.
const TimestampLayout = "2006-01-02T15:04:05Z"

// DateLayout is the calendar date format used for ranges and sleep ids.
const DateLayout = "2006-01-02"

const activityIDLayout = "20060102150405"

// Activity is the session-level summary of one recording.
type Activity struct {
	ID                int64     `json:"activity_id" yaml:"activity_id"`
	Sport             *string   `json:"sport,omitempty" yaml:"sport,omitempty"`
	StartTime         time.Time `json:"start_time" yaml:"start_time"`
	DistanceM         *float64  `json:"distance_m,omitempty" yaml:"distance_m,omitempty"`
	TotalElapsedTimeS *float64  `json:"total_elapsed_time_s,omitempty" yaml:"total_elapsed_time_s,omitempty"`
	TotalTimerTimeS   *float64  `json:"total_timer_time_s,omitempty" yaml:"total_timer_time_s,omitempty"`
	Calories          *float64  `json:"calories,omitempty" yaml:"calories,omitempty"`
	AvgHR             *float64  `json:"avg_hr,omitempty" yaml:"avg_hr,omitempty"`
	MaxHR             *float64  `json:"max_hr,omitempty" yaml:"max_hr,omitempty"`
	AvgCadence        *float64  `json:"avg_cadence,omitempty" yaml:"avg_cadence,omitempty"`
	NumLaps           *int      `json:"num_laps,omitempty" yaml:"num_laps,omitempty"`
	TotalAscentM      *float64  `json:"total_ascent_m,omitempty" yaml:"total_ascent_m,omitempty"`
	TotalDescentM     *float64  `json:"total_descent_m,omitempty" yaml:"total_descent_m,omitempty"`
	RPE               *float64  `json:"workout_rpe,omitempty" yaml:"workout_rpe,omitempty"`
	Feel              *float64  `json:"workout_feel,omitempty" yaml:"workout_feel,omitempty"`
}

// Date returns the UTC calendar date the activity started on.
func (a *Activity) Date() string {
	return a.StartTime.UTC().Format(DateLayout)
}

// SportName returns the sport or an empty string.
func (a *Activity) SportName() string {
	if a.Sport == nil {
		return ""
	}
	return *a.Sport
}

// Lap is one lap summary. Number is 1-based and assigned by position in the file.
type Lap struct {
	ActivityID        int64      `json:"activity_id" yaml:"activity_id"`
	Number            int        `json:"lap_number" yaml:"lap_number"`
	StartTime         *time.Time `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	DistanceM         *float64   `json:"distance_m,omitempty" yaml:"distance_m,omitempty"`
	TotalElapsedTimeS *float64   `json:"total_elapsed_time_s,omitempty" yaml:"total_elapsed_time_s,omitempty"`
	TotalTimerTimeS   *float64   `json:"total_timer_time_s,omitempty" yaml:"total_timer_time_s,omitempty"`
	AvgHR             *float64   `json:"avg_hr,omitempty" yaml:"avg_hr,omitempty"`
	MaxHR             *float64   `json:"max_hr,omitempty" yaml:"max_hr,omitempty"`
	Calories          *float64   `json:"calories,omitempty" yaml:"calories,omitempty"`
	AvgCadence        *float64   `json:"avg_cadence,omitempty" yaml:"avg_cadence,omitempty"`
	Trigger           *string    `json:"lap_trigger,omitempty" yaml:"lap_trigger,omitempty"`
}

// Sample is one per-second record. (ActivityID, Timestamp) is unique.
type Sample struct {
	ActivityID   int64     `json:"activity_id" yaml:"activity_id"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	RecordNumber int       `json:"record_number" yaml:"record_number"`
	HeartRate    *int      `json:"heart_rate,omitempty" yaml:"heart_rate,omitempty"`
	Cadence      *int      `json:"cadence,omitempty" yaml:"cadence,omitempty"`
	DistanceM    *float64  `json:"distance,omitempty" yaml:"distance,omitempty"`
	Power        *int      `json:"power,omitempty" yaml:"power,omitempty"`
	SpeedMPS     *float64  `json:"speed,omitempty" yaml:"speed,omitempty"`
	AltitudeM    *float64  `json:"altitude,omitempty" yaml:"altitude,omitempty"`
}

// ActivityIDFromTime formats t (in UTC) as the integer YYYYMMDDHHMMSS.
func ActivityIDFromTime(t time.Time) int64 {
	id, _ := strconv.ParseInt(t.UTC().Format(activityIDLayout), 10, 64)
	return id
}

// ActivityIDTime parses an activity id back into its start instant.
func ActivityIDTime(id int64) (time.Time, error) {
	t, err := time.Parse(activityIDLayout, strconv.FormatInt(id, 10))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse activity id %d: %w", id, err)
	}
	return t, nil
}

// FormatTimestamp renders t in the storage layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a value produced by FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
