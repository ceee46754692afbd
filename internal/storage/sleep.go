// ABOUTME: Sleep summary persistence.
// ABOUTME: One row per calendar date; repeat imports are no-ops.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/trainload/internal/models"
)

const sleepColumns = `sleep_id, total_sleep_seconds, deep_sleep_seconds, light_sleep_seconds,
	rem_sleep_seconds, awake_sleep_seconds, avg_sleep_stress, overall_score,
	avg_overnight_hrv, resting_heart_rate`

// InsertSleep stores a sleep summary. Returns false when the date already exists.
func (d *DB) InsertSleep(ctx context.Context, s *models.Sleep) (bool, error) {
	res, err := d.db.ExecContext(ctx, d.rebind(`
		INSERT INTO sleep (`+sleepColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sleep_id) DO NOTHING
	`),
		s.ID,
		argInt(s.TotalSleepSeconds),
		argInt(s.DeepSleepSeconds),
		argInt(s.LightSleepSeconds),
		argInt(s.REMSleepSeconds),
		argInt(s.AwakeSleepSeconds),
		argFloat(s.AvgSleepStress),
		argInt(s.OverallScore),
		argFloat(s.AvgOvernightHRV),
		argInt(s.RestingHeartRate),
	)
	if err != nil {
		return false, fmt.Errorf("insert sleep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert sleep: %w", err)
	}
	return n > 0, nil
}

// SleepExists reports whether a summary for the date is stored.
func (d *DB) SleepExists(ctx context.Context, sleepID string) (bool, error) {
	var n int
	err := d.db.QueryRowContext(ctx, d.rebind("SELECT COUNT(*) FROM sleep WHERE sleep_id = ?"), sleepID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check sleep: %w", err)
	}
	return n > 0, nil
}

// ListSleep returns summaries dated within [from, to], oldest first.
func (d *DB) ListSleep(ctx context.Context, from, to time.Time) ([]*models.Sleep, error) {
	lo, hi := dateBounds(from, to)
	return d.querySleep(ctx, d.rebind(`
		SELECT `+sleepColumns+`
		FROM sleep
		WHERE sleep_id >= ? AND sleep_id < ?
		ORDER BY sleep_id
	`), lo, hi)
}

func (d *DB) querySleep(ctx context.Context, query string, args ...any) ([]*models.Sleep, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sleep: %w", err)
	}
	defer rows.Close()

	var out []*models.Sleep
	for rows.Next() {
		var (
			s                      models.Sleep
			total, deep, light     sql.NullInt64
			rem, awake, score, rhr sql.NullInt64
			stress, hrv            sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &total, &deep, &light, &rem, &awake, &stress, &score, &hrv, &rhr); err != nil {
			return nil, fmt.Errorf("scan sleep: %w", err)
		}
		s.TotalSleepSeconds = ptrInt(total)
		s.DeepSleepSeconds = ptrInt(deep)
		s.LightSleepSeconds = ptrInt(light)
		s.REMSleepSeconds = ptrInt(rem)
		s.AwakeSleepSeconds = ptrInt(awake)
		s.AvgSleepStress = ptrFloat(stress)
		s.OverallScore = ptrInt(score)
		s.AvgOvernightHRV = ptrFloat(hrv)
		s.RestingHeartRate = ptrInt(rhr)
		out = append(out, &s)
	}
	return out, rows.Err()
}
