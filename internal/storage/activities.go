// ABOUTME: Activity and lap persistence.
// ABOUTME: An activity, its laps and samples are written in one transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/trainload/internal/models"
)

const activityColumns = `activity_id, sport, start_time_gmt, distance_m, total_elapsed_time_s,
	total_timer_time_s, calories, avg_hr, max_hr, avg_cadence, num_laps,
	total_ascent, total_descent, workout_rpe, workout_feel`

// InsertActivity stores an activity with its laps and samples.
// Returns false without writing anything when the activity already exists.
func (d *DB) InsertActivity(ctx context.Context, a *models.Activity, laps []models.Lap, samples []models.Sample) (bool, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, d.rebind("SELECT 1 FROM activities WHERE activity_id = ?"), a.ID).Scan(&exists)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("check activity: %w", err)
	}

	query := d.rebind(`INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.ExecContext(ctx, query,
		a.ID,
		argString(a.Sport),
		models.FormatTimestamp(a.StartTime),
		argFloat(a.DistanceM),
		argFloat(a.TotalElapsedTimeS),
		argFloat(a.TotalTimerTimeS),
		argFloat(a.Calories),
		argFloat(a.AvgHR),
		argFloat(a.MaxHR),
		argFloat(a.AvgCadence),
		argInt(a.NumLaps),
		argFloat(a.TotalAscentM),
		argFloat(a.TotalDescentM),
		argFloat(a.RPE),
		argFloat(a.Feel),
	)
	if err != nil {
		return false, fmt.Errorf("insert activity: %w", err)
	}

	if err := d.insertLaps(ctx, tx, a.ID, laps); err != nil {
		return false, err
	}
	if _, err := d.insertSamples(ctx, tx, a.ID, samples); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit activity: %w", err)
	}
	return true, nil
}

func (d *DB) insertLaps(ctx context.Context, tx *sql.Tx, activityID int64, laps []models.Lap) error {
	if len(laps) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, d.rebind(`
		INSERT INTO laps (activity_id, lap_number, start_time, distance_m, total_elapsed_time_s,
			total_timer_time_s, avg_hr, max_hr, calories, avg_cadence, lap_trigger)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("prepare lap insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range laps {
		// Lap numbers follow file order regardless of what the caller set.
		_, err := stmt.ExecContext(ctx,
			activityID,
			i+1,
			argTime(l.StartTime),
			argFloat(l.DistanceM),
			argFloat(l.TotalElapsedTimeS),
			argFloat(l.TotalTimerTimeS),
			argFloat(l.AvgHR),
			argFloat(l.MaxHR),
			argFloat(l.Calories),
			argFloat(l.AvgCadence),
			argString(l.Trigger),
		)
		if err != nil {
			return fmt.Errorf("insert lap %d: %w", i+1, err)
		}
	}
	return nil
}

// ActivityExists reports whether an activity id is stored.
func (d *DB) ActivityExists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx, d.rebind("SELECT COUNT(*) FROM activities WHERE activity_id = ?"), id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check activity: %w", err)
	}
	return n > 0, nil
}

// GetActivity retrieves one activity by id.
func (d *DB) GetActivity(ctx context.Context, id int64) (*models.Activity, error) {
	row := d.db.QueryRowContext(ctx, d.rebind(`SELECT `+activityColumns+` FROM activities WHERE activity_id = ?`), id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

// ListActivities returns activities whose UTC start date is within [from, to],
// ordered by start time.
func (d *DB) ListActivities(ctx context.Context, from, to time.Time) ([]*models.Activity, error) {
	lo, hi := dateBounds(from, to)
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT `+activityColumns+`
		FROM activities
		WHERE start_time_gmt >= ? AND start_time_gmt < ?
		ORDER BY start_time_gmt
	`), lo, hi)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// listAllActivities returns every stored activity ordered by start time.
func (d *DB) listAllActivities(ctx context.Context) ([]*models.Activity, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+activityColumns+` FROM activities ORDER BY start_time_gmt`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListLaps returns the laps of an activity in lap order.
func (d *DB) ListLaps(ctx context.Context, activityID int64) ([]models.Lap, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT activity_id, lap_number, start_time, distance_m, total_elapsed_time_s,
			total_timer_time_s, avg_hr, max_hr, calories, avg_cadence, lap_trigger
		FROM laps
		WHERE activity_id = ?
		ORDER BY lap_number
	`), activityID)
	if err != nil {
		return nil, fmt.Errorf("list laps: %w", err)
	}
	defer rows.Close()

	var out []models.Lap
	for rows.Next() {
		var (
			l                    models.Lap
			start, trigger       sql.NullString
			dist, elapsed, timer sql.NullFloat64
			avgHR, maxHR         sql.NullFloat64
			calories, avgCadence sql.NullFloat64
		)
		if err := rows.Scan(&l.ActivityID, &l.Number, &start, &dist, &elapsed, &timer,
			&avgHR, &maxHR, &calories, &avgCadence, &trigger); err != nil {
			return nil, fmt.Errorf("scan lap: %w", err)
		}
		if l.StartTime, err = ptrTime(start); err != nil {
			return nil, fmt.Errorf("parse lap start: %w", err)
		}
		l.DistanceM = ptrFloat(dist)
		l.TotalElapsedTimeS = ptrFloat(elapsed)
		l.TotalTimerTimeS = ptrFloat(timer)
		l.AvgHR = ptrFloat(avgHR)
		l.MaxHR = ptrFloat(maxHR)
		l.Calories = ptrFloat(calories)
		l.AvgCadence = ptrFloat(avgCadence)
		l.Trigger = ptrString(trigger)
		out = append(out, l)
	}
	return out, rows.Err()
}

// CountActivities returns the number of stored activities.
func (d *DB) CountActivities(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (*models.Activity, error) {
	var (
		a                              models.Activity
		sport                          sql.NullString
		start                          string
		dist, elapsed, timer, calories sql.NullFloat64
		avgHR, maxHR, avgCadence       sql.NullFloat64
		numLaps                        sql.NullInt64
		ascent, descent, rpe, feel     sql.NullFloat64
	)
	if err := s.Scan(&a.ID, &sport, &start, &dist, &elapsed, &timer, &calories,
		&avgHR, &maxHR, &avgCadence, &numLaps, &ascent, &descent, &rpe, &feel); err != nil {
		return nil, err
	}

	t, err := models.ParseTimestamp(start)
	if err != nil {
		return nil, fmt.Errorf("parse start time %q: %w", start, err)
	}
	a.StartTime = t
	a.Sport = ptrString(sport)
	a.DistanceM = ptrFloat(dist)
	a.TotalElapsedTimeS = ptrFloat(elapsed)
	a.TotalTimerTimeS = ptrFloat(timer)
	a.Calories = ptrFloat(calories)
	a.AvgHR = ptrFloat(avgHR)
	a.MaxHR = ptrFloat(maxHR)
	a.AvgCadence = ptrFloat(avgCadence)
	a.NumLaps = ptrInt(numLaps)
	a.TotalAscentM = ptrFloat(ascent)
	a.TotalDescentM = ptrFloat(descent)
	a.RPE = ptrFloat(rpe)
	a.Feel = ptrFloat(feel)
	return &a, nil
}
