// ABOUTME: Data migration between training storage backends.
// ABOUTME: Copies users, activities with laps and samples, and sleep from source to destination.

package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated entities. Records already present
// in the destination are not counted.
type MigrateSummary struct {
	Users      int `json:"users"`
	Activities int `json:"activities"`
	Laps       int `json:"laps"`
	Samples    int `json:"samples"`
	Sleep      int `json:"sleep"`
}

// MigrateData copies all data from src to dst. Inserts are idempotent, so an
// interrupted migration can be re-run.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	data, err := src.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source data: %w", err)
	}

	for _, u := range data.Users {
		if err := dst.UpsertUser(ctx, u); err != nil {
			return nil, fmt.Errorf("copy user %s: %w", u.ID, err)
		}
		summary.Users++
	}

	for _, a := range data.Activities {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		samples, err := src.ListSamples(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("list samples of %d: %w", a.ID, err)
		}

		inserted, err := dst.InsertActivity(ctx, &a.Activity, a.Laps, samples)
		if err != nil {
			return nil, fmt.Errorf("copy activity %d: %w", a.ID, err)
		}
		if inserted {
			summary.Activities++
			summary.Laps += len(a.Laps)
			summary.Samples += len(samples)
		}
	}

	for _, s := range data.Sleep {
		inserted, err := dst.InsertSleep(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("copy sleep %s: %w", s.ID, err)
		}
		if inserted {
			summary.Sleep++
		}
	}

	return summary, nil
}
