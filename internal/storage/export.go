// ABOUTME: Export and restore of stored training data.
// ABOUTME: Supports JSON (full backup) and YAML (human-readable) formats.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/trainload/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is the current backup format version.
const ExportVersion = "1.0"

// ExportActivity is an activity together with its laps.
type ExportActivity struct {
	models.Activity `yaml:",inline"`
	Laps            []models.Lap `json:"laps,omitempty" yaml:"laps,omitempty"`
}

// ExportData represents the full export format. Samples are not included;
// use the samples export for per-second data.
type ExportData struct {
	Version    string            `json:"version" yaml:"version"`
	ExportedAt time.Time         `json:"exported_at" yaml:"exported_at"`
	Tool       string            `json:"tool" yaml:"tool"`
	Users      []*models.User    `json:"users" yaml:"users"`
	Activities []*ExportActivity `json:"activities" yaml:"activities"`
	Sleep      []*models.Sleep   `json:"sleep" yaml:"sleep"`
}

// GetAllData retrieves all summary data for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	users, err := d.listUsers(ctx)
	if err != nil {
		return nil, err
	}

	activities, err := d.listAllActivities(ctx)
	if err != nil {
		return nil, err
	}
	exported := make([]*ExportActivity, 0, len(activities))
	for _, a := range activities {
		laps, err := d.ListLaps(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("list laps: %w", err)
		}
		exported = append(exported, &ExportActivity{Activity: *a, Laps: laps})
	}

	sleep, err := d.querySleep(ctx, `SELECT `+sleepColumns+` FROM sleep ORDER BY sleep_id`)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       "trainload",
		Users:      users,
		Activities: exported,
		Sleep:      sleep,
	}, nil
}

// ImportData restores summary data from an export. Existing activities and
// sleep dates are left untouched; users are upserted.
func (d *DB) ImportData(ctx context.Context, data *ExportData) (activities, sleep int, err error) {
	for _, u := range data.Users {
		if err := d.UpsertUser(ctx, u); err != nil {
			return activities, sleep, fmt.Errorf("import user: %w", err)
		}
	}

	for _, a := range data.Activities {
		ok, err := d.InsertActivity(ctx, &a.Activity, a.Laps, nil)
		if err != nil {
			return activities, sleep, fmt.Errorf("import activity %d: %w", a.ID, err)
		}
		if ok {
			activities++
		}
	}

	for _, s := range data.Sleep {
		ok, err := d.InsertSleep(ctx, s)
		if err != nil {
			return activities, sleep, fmt.Errorf("import sleep %s: %w", s.ID, err)
		}
		if ok {
			sleep++
		}
	}

	return activities, sleep, nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML with activities grouped by sport.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                    `yaml:"version"`
		ExportedAt string                    `yaml:"exported_at"`
		Tool       string                    `yaml:"tool"`
		Users      []*models.User            `yaml:"users,omitempty"`
		Activities map[string][]yamlActivity `yaml:"activities"`
		Sleep      []*models.Sleep           `yaml:"sleep,omitempty"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Users:      data.Users,
		Activities: make(map[string][]yamlActivity),
		Sleep:      data.Sleep,
	}

	for _, a := range data.Activities {
		sport := a.SportName()
		if sport == "" {
			sport = "unknown"
		}
		ya := yamlActivity{
			ID:    a.ID,
			Start: models.FormatTimestamp(a.StartTime),
			Laps:  len(a.Laps),
			RPE:   a.RPE,
			Feel:  a.Feel,
		}
		if a.DistanceM != nil {
			ya.DistanceKm = *a.DistanceM / 1000
		}
		if a.TotalTimerTimeS != nil {
			ya.DurationMin = *a.TotalTimerTimeS / 60
		}
		yamlData.Activities[sport] = append(yamlData.Activities[sport], ya)
	}

	return yaml.Marshal(yamlData)
}

type yamlActivity struct {
	ID          int64    `yaml:"id"`
	Start       string   `yaml:"start"`
	DistanceKm  float64  `yaml:"distance_km,omitempty"`
	DurationMin float64  `yaml:"duration_min,omitempty"`
	Laps        int      `yaml:"laps,omitempty"`
	RPE         *float64 `yaml:"rpe,omitempty"`
	Feel        *float64 `yaml:"feel,omitempty"`
}

// ImportJSON restores data from JSON bytes produced by ExportJSON.
func (d *DB) ImportJSON(ctx context.Context, raw []byte) (activities, sleep int, err error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, 0, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(ctx, &data)
}
