// ABOUTME: Per-second sample persistence and time-series reads.
// ABOUTME: Duplicate (activity, timestamp) pairs are dropped; the first write wins.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/trainload/internal/models"
)

// InsertSamples stores samples for an existing activity and returns how many
// rows were actually written.
func (d *DB) InsertSamples(ctx context.Context, activityID int64, samples []models.Sample) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := d.insertSamples(ctx, tx, activityID, samples)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit samples: %w", err)
	}
	return n, nil
}

func (d *DB) insertSamples(ctx context.Context, tx *sql.Tx, activityID int64, samples []models.Sample) (int64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	stmt, err := tx.PrepareContext(ctx, d.rebind(`
		INSERT INTO records (activity_id, timestamp, record_number, heart_rate, cadence, distance, power, speed, altitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (activity_id, timestamp) DO NOTHING
	`))
	if err != nil {
		return 0, fmt.Errorf("prepare sample insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, s := range samples {
		res, err := stmt.ExecContext(ctx,
			activityID,
			models.FormatTimestamp(s.Timestamp),
			s.RecordNumber,
			argInt(s.HeartRate),
			argInt(s.Cadence),
			argFloat(s.DistanceM),
			argInt(s.Power),
			argFloat(s.SpeedMPS),
			argFloat(s.AltitudeM),
		)
		if err != nil {
			return 0, fmt.Errorf("insert sample %d: %w", s.RecordNumber, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}
	return inserted, nil
}

// ListSamples returns all samples of an activity in time order.
func (d *DB) ListSamples(ctx context.Context, activityID int64) ([]models.Sample, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT activity_id, timestamp, record_number, heart_rate, cadence, distance, power, speed, altitude
		FROM records
		WHERE activity_id = ?
		ORDER BY timestamp
	`), activityID)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	var out []models.Sample
	for rows.Next() {
		var (
			s                     models.Sample
			ts                    string
			recordNumber          sql.NullInt64
			hr, cadence, power    sql.NullInt64
			dist, speed, altitude sql.NullFloat64
		)
		if err := rows.Scan(&s.ActivityID, &ts, &recordNumber, &hr, &cadence, &dist, &power, &speed, &altitude); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		t, err := models.ParseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("parse sample timestamp %q: %w", ts, err)
		}
		s.Timestamp = t
		s.RecordNumber = int(recordNumber.Int64)
		s.HeartRate = ptrInt(hr)
		s.Cadence = ptrInt(cadence)
		s.Power = ptrInt(power)
		s.DistanceM = ptrFloat(dist)
		s.SpeedMPS = ptrFloat(speed)
		s.AltitudeM = ptrFloat(altitude)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListHeartRateSamples returns the heart-rate series of every activity that
// started within [from, to], keyed by activity id. Samples without heart rate
// are not included.
func (d *DB) ListHeartRateSamples(ctx context.Context, from, to time.Time) (map[int64][]float64, error) {
	lo, hi := dateBounds(from, to)
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT r.activity_id, r.heart_rate
		FROM records r
		JOIN activities a ON a.activity_id = r.activity_id
		WHERE a.start_time_gmt >= ? AND a.start_time_gmt < ?
			AND r.heart_rate IS NOT NULL
		ORDER BY r.activity_id, r.timestamp
	`), lo, hi)
	if err != nil {
		return nil, fmt.Errorf("list heart rate samples: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]float64)
	for rows.Next() {
		var id int64
		var hr float64
		if err := rows.Scan(&id, &hr); err != nil {
			return nil, fmt.Errorf("scan heart rate: %w", err)
		}
		out[id] = append(out[id], hr)
	}
	return out, rows.Err()
}

// ListSpeedSamples returns samples of activities of the given sport that
// started on or after since, ordered by activity then timestamp.
func (d *DB) ListSpeedSamples(ctx context.Context, sport string, since time.Time) ([]SpeedSample, error) {
	rows, err := d.db.QueryContext(ctx, d.rebind(`
		SELECT r.activity_id, r.timestamp, r.distance, r.speed
		FROM records r
		JOIN activities a ON a.activity_id = r.activity_id
		WHERE a.sport = ? AND a.start_time_gmt >= ?
		ORDER BY r.activity_id, r.timestamp
	`), sport, since.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("list speed samples: %w", err)
	}
	defer rows.Close()

	var out []SpeedSample
	for rows.Next() {
		var (
			s           SpeedSample
			ts          string
			dist, speed sql.NullFloat64
		)
		if err := rows.Scan(&s.ActivityID, &ts, &dist, &speed); err != nil {
			return nil, fmt.Errorf("scan speed sample: %w", err)
		}
		t, err := models.ParseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("parse sample timestamp %q: %w", ts, err)
		}
		s.Timestamp = t
		s.DistanceM = ptrFloat(dist)
		s.SpeedMPS = ptrFloat(speed)
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountSamples returns the number of samples stored for an activity.
func (d *DB) CountSamples(ctx context.Context, activityID int64) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, d.rebind("SELECT COUNT(*) FROM records WHERE activity_id = ?"), activityID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}
