// ABOUTME: Repository interface for training data storage.
// ABOUTME: Defines the contract for idempotent inserts and range reads.
package storage

import (
	"context"
	"time"

	"github.com/harperreed/trainload/internal/models"
)

// SpeedSample is one running sample used for speed-zone volume.
type SpeedSample struct {
	ActivityID int64
	Timestamp  time.Time
	DistanceM  *float64
	SpeedMPS   *float64
}

// Repository defines the storage interface for training data.
// Date arguments are calendar dates; ranges include both ends.
type Repository interface {
	// User operations
	UpsertUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// Activity operations
	InsertActivity(ctx context.Context, a *models.Activity, laps []models.Lap, samples []models.Sample) (bool, error)
	ActivityExists(ctx context.Context, id int64) (bool, error)
	GetActivity(ctx context.Context, id int64) (*models.Activity, error)
	ListActivities(ctx context.Context, from, to time.Time) ([]*models.Activity, error)
	ListLaps(ctx context.Context, activityID int64) ([]models.Lap, error)

	// Sample operations
	InsertSamples(ctx context.Context, activityID int64, samples []models.Sample) (int64, error)
	ListSamples(ctx context.Context, activityID int64) ([]models.Sample, error)
	ListHeartRateSamples(ctx context.Context, from, to time.Time) (map[int64][]float64, error)
	ListSpeedSamples(ctx context.Context, sport string, since time.Time) ([]SpeedSample, error)

	// Sleep operations
	InsertSleep(ctx context.Context, s *models.Sleep) (bool, error)
	SleepExists(ctx context.Context, sleepID string) (bool, error)
	ListSleep(ctx context.Context, from, to time.Time) ([]*models.Sleep, error)

	// Export
	GetAllData(ctx context.Context) (*ExportData, error)

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)

// dateBounds turns an inclusive date range into half-open text bounds
// comparable against stored timestamps.
func dateBounds(from, to time.Time) (string, string) {
	return from.Format(models.DateLayout), to.AddDate(0, 0, 1).Format(models.DateLayout)
}
