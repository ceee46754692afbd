// ABOUTME: Parses nightly sleep summary exports into Sleep rows.
// ABOUTME: The calendar date of the night is the record identity.
package sleep

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/harperreed/trainload/internal/models"
)

var (
	// ErrParse marks a file that is missing or not a sleep document.
	ErrParse = errors.New("unparseable sleep file")
	// ErrMissingIdentity marks a document without a calendar date.
	ErrMissingIdentity = fmt.Errorf("%w: missing calendarDate", ErrParse)
)

type document struct {
	Daily            *dailySleep `json:"dailySleepDTO"`
	AvgOvernightHRV  *float64    `json:"avgOvernightHrv"`
	RestingHeartRate *float64    `json:"restingHeartRate"`
}

type dailySleep struct {
	CalendarDate      string   `json:"calendarDate"`
	SleepTimeSeconds  *float64 `json:"sleepTimeSeconds"`
	DeepSleepSeconds  *float64 `json:"deepSleepSeconds"`
	LightSleepSeconds *float64 `json:"lightSleepSeconds"`
	REMSleepSeconds   *float64 `json:"remSleepSeconds"`
	AwakeSleepSeconds *float64 `json:"awakeSleepSeconds"`
	AvgSleepStress    *float64 `json:"avgSleepStress"`
	SleepScores       *struct {
		Overall *struct {
			Value *float64 `json:"value"`
		} `json:"overall"`
	} `json:"sleepScores"`
}

// Extract reads one sleep export file.
func Extract(path string) (*models.Sleep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrParse, path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a sleep export document.
func Parse(data []byte) (*models.Sleep, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if doc.Daily == nil {
		return nil, fmt.Errorf("%w: missing dailySleepDTO", ErrParse)
	}
	d := doc.Daily
	if d.CalendarDate == "" {
		return nil, ErrMissingIdentity
	}
	if _, err := time.Parse(models.DateLayout, d.CalendarDate); err != nil {
		return nil, fmt.Errorf("%w: calendarDate %q: %v", ErrParse, d.CalendarDate, err)
	}

	s := &models.Sleep{
		ID:                d.CalendarDate,
		TotalSleepSeconds: toInt(d.SleepTimeSeconds),
		DeepSleepSeconds:  toInt(d.DeepSleepSeconds),
		LightSleepSeconds: toInt(d.LightSleepSeconds),
		REMSleepSeconds:   toInt(d.REMSleepSeconds),
		AwakeSleepSeconds: toInt(d.AwakeSleepSeconds),
		AvgSleepStress:    d.AvgSleepStress,
		AvgOvernightHRV:   doc.AvgOvernightHRV,
		RestingHeartRate:  toInt(doc.RestingHeartRate),
	}
	if d.SleepScores != nil && d.SleepScores.Overall != nil {
		s.OverallScore = toInt(d.SleepScores.Overall.Value)
	}
	return s, nil
}

func toInt(v *float64) *int {
	if v == nil {
		return nil
	}
	return models.Int(int(math.Round(*v)))
}
