// ABOUTME: Tests for data migration between storage backends.
// ABOUTME: Covers a file-to-memory copy and idempotent re-runs.
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/trainload/internal/models"
)

func TestMigrateData(t *testing.T) {
	ctx := context.Background()
	src := setupTestDB(t)

	start := time.Date(2025, 3, 9, 7, 5, 3, 0, time.UTC)
	a := sampleActivity(start)
	laps := []models.Lap{
		{DistanceM: models.Float(5000)},
		{DistanceM: models.Float(5000)},
	}
	if _, err := src.InsertActivity(ctx, a, laps, sampleSeries(a.ID, start, 90, 150, 3.3)); err != nil {
		t.Fatalf("InsertActivity failed: %v", err)
	}
	if _, err := src.InsertSleep(ctx, &models.Sleep{ID: "2025-03-09", OverallScore: models.Int(81)}); err != nil {
		t.Fatalf("InsertSleep failed: %v", err)
	}
	if err := src.UpsertUser(ctx, &models.User{ID: "me", FullName: models.String("Ada Runner")}); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	dst, err := OpenMemory(ctx)
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer dst.Close()

	summary, err := MigrateData(ctx, src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	want := MigrateSummary{Users: 1, Activities: 1, Laps: 2, Samples: 90, Sleep: 1}
	if *summary != want {
		t.Errorf("summary = %+v, want %+v", *summary, want)
	}

	got, err := dst.GetActivity(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetActivity on destination failed: %v", err)
	}
	if got.RPE == nil || *got.RPE != 6 {
		t.Errorf("RPE = %v, want 6", got.RPE)
	}
	n, err := dst.CountSamples(ctx, a.ID)
	if err != nil {
		t.Fatalf("CountSamples failed: %v", err)
	}
	if n != 90 {
		t.Errorf("Expected 90 samples, got %d", n)
	}
	u, err := dst.GetUser(ctx, "me")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u.FullName == nil || *u.FullName != "Ada Runner" {
		t.Errorf("FullName = %v", u.FullName)
	}

	// Second run copies nothing new.
	again, err := MigrateData(ctx, src, dst)
	if err != nil {
		t.Fatalf("second MigrateData failed: %v", err)
	}
	if again.Activities != 0 || again.Samples != 0 || again.Sleep != 0 {
		t.Errorf("re-run summary = %+v, want no new records", *again)
	}
}

func TestMigrateDataCancelled(t *testing.T) {
	src := setupTestDB(t)
	start := time.Date(2025, 3, 9, 7, 5, 3, 0, time.UTC)
	if _, err := src.InsertActivity(context.Background(), sampleActivity(start), nil, nil); err != nil {
		t.Fatalf("InsertActivity failed: %v", err)
	}

	dst, err := OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer dst.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := MigrateData(ctx, src, dst); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
