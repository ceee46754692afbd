// ABOUTME: Schema definition and initialization shared by both SQL engines.
// ABOUTME: Defines users, activities, laps, records and sleep tables.
package storage

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		full_name TEXT,
		display_name TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS activities (
		activity_id BIGINT PRIMARY KEY,
		sport TEXT,
		start_time_gmt TEXT NOT NULL,
		distance_m DOUBLE PRECISION,
		total_elapsed_time_s DOUBLE PRECISION,
		total_timer_time_s DOUBLE PRECISION,
		calories DOUBLE PRECISION,
		avg_hr DOUBLE PRECISION,
		max_hr DOUBLE PRECISION,
		avg_cadence DOUBLE PRECISION,
		num_laps INTEGER,
		total_ascent DOUBLE PRECISION,
		total_descent DOUBLE PRECISION,
		workout_rpe DOUBLE PRECISION,
		workout_feel DOUBLE PRECISION
	)`,

	`CREATE TABLE IF NOT EXISTS laps (
		activity_id BIGINT NOT NULL REFERENCES activities(activity_id) ON DELETE CASCADE,
		lap_number INTEGER NOT NULL,
		start_time TEXT,
		distance_m DOUBLE PRECISION,
		total_elapsed_time_s DOUBLE PRECISION,
		total_timer_time_s DOUBLE PRECISION,
		avg_hr DOUBLE PRECISION,
		max_hr DOUBLE PRECISION,
		calories DOUBLE PRECISION,
		avg_cadence DOUBLE PRECISION,
		lap_trigger TEXT,
		PRIMARY KEY (activity_id, lap_number)
	)`,

	`CREATE TABLE IF NOT EXISTS records (
		activity_id BIGINT NOT NULL REFERENCES activities(activity_id) ON DELETE CASCADE,
		timestamp TEXT NOT NULL,
		record_number INTEGER,
		heart_rate INTEGER,
		cadence INTEGER,
		distance DOUBLE PRECISION,
		power INTEGER,
		speed DOUBLE PRECISION,
		altitude DOUBLE PRECISION,
		PRIMARY KEY (activity_id, timestamp)
	)`,

	`CREATE TABLE IF NOT EXISTS sleep (
		sleep_id TEXT PRIMARY KEY,
		total_sleep_seconds INTEGER,
		deep_sleep_seconds INTEGER,
		light_sleep_seconds INTEGER,
		rem_sleep_seconds INTEGER,
		awake_sleep_seconds INTEGER,
		avg_sleep_stress DOUBLE PRECISION,
		overall_score INTEGER,
		avg_overnight_hrv DOUBLE PRECISION,
		resting_heart_rate INTEGER
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_start ON activities(start_time_gmt)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_sport_start ON activities(sport, start_time_gmt)`,
}

// initSchema creates the tables if they do not exist.
// Statements run one at a time.
func (d *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
