// ABOUTME: Tests for the query layer: derived views, presets and caching.
// ABOUTME: Uses an in-memory fake store that counts reads.
package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/storage"
	"github.com/harperreed/trainload/internal/zones"
)

type fakeStore struct {
	activities []*models.Activity
	heartRates map[int64][]float64
	speed      []storage.SpeedSample
	sleep      []*models.Sleep
	err        error

	activityCalls int
	speedSince    time.Time
}

func (f *fakeStore) ListActivities(_ context.Context, from, to time.Time) ([]*models.Activity, error) {
	f.activityCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Activity
	for _, a := range f.activities {
		d := a.Date()
		if d >= from.Format(models.DateLayout) && d <= to.Format(models.DateLayout) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListHeartRateSamples(context.Context, time.Time, time.Time) (map[int64][]float64, error) {
	return f.heartRates, nil
}

func (f *fakeStore) ListSpeedSamples(_ context.Context, _ string, since time.Time) ([]storage.SpeedSample, error) {
	f.speedSince = since
	return f.speed, nil
}

func (f *fakeStore) ListSleep(context.Context, time.Time, time.Time) ([]*models.Sleep, error) {
	return f.sleep, nil
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newTestService(t *testing.T, store Store, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(store, opts...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func stressFixture() *fakeStore {
	morning := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	nextDay := time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC)

	// 10 min Z1 + 20 min Z3, rpe 7, feel 50 -> 70 * 1.15 = 80.5
	first := append(repeat(140, 600), repeat(180, 1200)...)
	// 19.5 = 19.5 min Z1 at multiplier 1.0
	second := repeat(140, 1170)

	return &fakeStore{
		activities: []*models.Activity{
			{ID: models.ActivityIDFromTime(morning), StartTime: morning, RPE: models.Float(7), Feel: models.Float(50), DistanceM: models.Float(10000), TotalTimerTimeS: models.Float(3000)},
			{ID: models.ActivityIDFromTime(evening), StartTime: evening, RPE: models.Float(5), Feel: models.Float(50), DistanceM: models.Float(5000), TotalTimerTimeS: models.Float(1200)},
			{ID: models.ActivityIDFromTime(nextDay), StartTime: nextDay, DistanceM: models.Float(8000)},
		},
		heartRates: map[int64][]float64{
			models.ActivityIDFromTime(morning): first,
			models.ActivityIDFromTime(evening): second,
			models.ActivityIDFromTime(nextDay): repeat(150, 600),
		},
	}
}

func TestDailyStress(t *testing.T) {
	svc := newTestService(t, stressFixture())

	daily, err := svc.DailyStress(context.Background(), date(t, "2025-03-10"), date(t, "2025-03-11"))
	require.NoError(t, err)
	require.Len(t, daily, 1, "activity without perception ratings is excluded")
	assert.Equal(t, "2025-03-10", daily[0].Date)
	assert.InDelta(t, 100.0, daily[0].StressScore, 1e-9)
	assert.Equal(t, 2, daily[0].Activities)

	scores, err := svc.ActivityScores(context.Background(), date(t, "2025-03-10"), date(t, "2025-03-10"))
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.InDelta(t, 80.5, scores[0].StressScore, 1e-9)
	assert.InDelta(t, 70.0, scores[0].ZTRIMP, 1e-9)
	assert.InDelta(t, 1.15, scores[0].Multiplier, 1e-9)
}

func TestQueriesAreCachedUntilInvalidated(t *testing.T) {
	store := stressFixture()
	svc := newTestService(t, store)
	ctx := context.Background()
	from, to := date(t, "2025-03-01"), date(t, "2025-03-31")

	_, err := svc.Activities(ctx, from, to)
	require.NoError(t, err)
	_, err = svc.Activities(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, store.activityCalls)

	svc.Invalidate()
	got, err := svc.Activities(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, store.activityCalls)
	assert.Len(t, got, 3)

	_, err = svc.Activities(ctx, from, date(t, "2025-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 3, store.activityCalls, "different range is a different key")
}

func TestCachedEntriesExpire(t *testing.T) {
	store := stressFixture()
	svc := newTestService(t, store, WithTTL(50*time.Millisecond))
	ctx := context.Background()
	from, to := date(t, "2025-03-01"), date(t, "2025-03-31")

	_, err := svc.Activities(ctx, from, to)
	require.NoError(t, err)
	_, err = svc.Activities(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, store.activityCalls)

	// Another process imports a new activity; no Invalidate reaches this service.
	late := time.Date(2025, 3, 20, 7, 0, 0, 0, time.UTC)
	store.activities = append(store.activities, &models.Activity{ID: models.ActivityIDFromTime(late), StartTime: late})

	time.Sleep(100 * time.Millisecond)
	got, err := svc.Activities(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, store.activityCalls)
	assert.Len(t, got, 4)
}

func TestErrorsAreNotCached(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	svc := newTestService(t, store)
	ctx := context.Background()
	from, to := date(t, "2025-03-01"), date(t, "2025-03-31")

	_, err := svc.Activities(ctx, from, to)
	require.Error(t, err)

	store.err = nil
	_, err = svc.Activities(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, store.activityCalls)
}

func TestInvalidRange(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	_, err := svc.Activities(context.Background(), date(t, "2025-03-10"), date(t, "2025-03-01"))
	assert.Error(t, err)
	_, err = svc.DailyStress(context.Background(), date(t, "2025-03-10"), date(t, "2025-03-01"))
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	svc := newTestService(t, stressFixture())

	sum, err := svc.Summary(context.Background(), date(t, "2025-03-10"), date(t, "2025-03-16"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", sum.From)
	assert.Equal(t, "2025-03-16", sum.To)
	assert.Equal(t, 3, sum.Sessions)
	assert.InDelta(t, 23.0, sum.DistanceKm, 1e-9)
	assert.InDelta(t, 70.0, sum.EffortMinutes, 1e-9)
	assert.InDelta(t, 100.0, sum.StressScore, 1e-9)
}

func TestPeriodRange(t *testing.T) {
	wednesday := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	january := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		today    time.Time
		wantFrom string
		wantTo   string
	}{
		{PeriodThisWeek, wednesday, "2025-03-10", "2025-03-16"},
		{PeriodLastWeek, wednesday, "2025-03-03", "2025-03-09"},
		{PeriodThisMonth, wednesday, "2025-03-01", "2025-03-31"},
		{PeriodLastMonth, wednesday, "2025-02-01", "2025-02-28"},
		{PeriodYear, wednesday, "2025-01-01", "2025-03-12"},
		{PeriodLastMonth, january, "2024-12-01", "2024-12-31"},
		{PeriodLastWeek, january, "2025-01-06", "2025-01-12"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"@"+tt.today.Format(models.DateLayout), func(t *testing.T) {
			from, to, err := PeriodRange(tt.name, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from.Format(models.DateLayout))
			assert.Equal(t, tt.wantTo, to.Format(models.DateLayout))
		})
	}

	_, _, err := PeriodRange("fortnight", wednesday)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())

	_, err = ParseDate("09/03/2025")
	assert.Error(t, err)
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, "2025-03-10", WeekStart(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)).Format(models.DateLayout))
	assert.Equal(t, "2025-03-10", WeekStart(time.Date(2025, 3, 16, 23, 59, 59, 0, time.UTC)).Format(models.DateLayout))
	assert.Equal(t, "2025-03-17", WeekStart(time.Date(2025, 3, 17, 6, 0, 0, 0, time.UTC)).Format(models.DateLayout))
}

func run(id int64, start time.Time, n int, speedMPS float64) []storage.SpeedSample {
	out := make([]storage.SpeedSample, n)
	for i := range out {
		out[i] = storage.SpeedSample{
			ActivityID: id,
			Timestamp:  start.Add(time.Duration(i) * time.Second),
			DistanceM:  models.Float(float64(i) * speedMPS),
			SpeedMPS:   models.Float(speedMPS),
		}
	}
	return out
}

func zoneKm(t *testing.T, w WeekVolume, z zones.Zone) float64 {
	t.Helper()
	for _, zd := range w.Zones {
		if zd.Zone == z {
			return zd.DistanceKm
		}
	}
	t.Fatalf("zone %v missing from week %s", z, w.WeekStart)
	return 0
}

func TestWeeklyVolume(t *testing.T) {
	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	nextWeek := time.Date(2025, 3, 18, 8, 0, 0, 0, time.UTC)

	var samples []storage.SpeedSample
	// 4 m/s = 14.4 km/h (Z2), 1000 deltas of 4 m
	samples = append(samples, run(1, monday, 1001, 4)...)
	// 5 m/s = 18 km/h (Z3), 200 deltas of 5 m
	samples = append(samples, run(2, nextWeek, 201, 5)...)

	weeks := WeeklyVolume(samples)
	require.Len(t, weeks, 2)
	assert.Equal(t, "2025-03-10", weeks[0].WeekStart)
	assert.Equal(t, "2025-03-17", weeks[1].WeekStart)

	require.Len(t, weeks[0].Zones, zones.Count)
	for i, zd := range weeks[0].Zones {
		assert.Equal(t, zones.All()[i].Label(), zd.Label, "zones listed in canonical order")
	}
	assert.InDelta(t, 4.0, zoneKm(t, weeks[0], zones.Z2), 1e-9)
	assert.InDelta(t, 0.0, zoneKm(t, weeks[0], zones.Z1), 1e-9)
	assert.InDelta(t, 4.0, weeks[0].TotalKm, 1e-9)
	assert.InDelta(t, 1.0, zoneKm(t, weeks[1], zones.Z3), 1e-9)
}

func TestWeeklyVolumeMissingValues(t *testing.T) {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	samples := run(1, start, 5, 4)
	samples[2].SpeedMPS = nil  // its delta is not counted
	samples[3].DistanceM = nil // breaks the pairs (2,3) and (3,4)

	weeks := WeeklyVolume(samples)
	require.Len(t, weeks, 1)
	// Only the delta of sample 1 (4 m) survives.
	assert.InDelta(t, 0.004, zoneKm(t, weeks[0], zones.Z2), 1e-12)
}

func TestWeeklyVolumeDeltasDoNotCrossActivities(t *testing.T) {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	a := run(1, start, 2, 4)
	b := run(2, start.Add(time.Hour), 2, 4)
	// Second activity starts far along a different distance counter.
	b[0].DistanceM = models.Float(9000)
	b[1].DistanceM = models.Float(9004)

	weeks := WeeklyVolume(append(a, b...))
	require.Len(t, weeks, 1)
	assert.InDelta(t, 0.008, weeks[0].TotalKm, 1e-12)
}

func TestWeeklyVolumeKeepsLatestTenWeeks(t *testing.T) {
	first := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	var samples []storage.SpeedSample
	for w := 0; w < 12; w++ {
		samples = append(samples, run(int64(w+1), first.AddDate(0, 0, 7*w), 11, 3)...)
	}

	weeks := WeeklyVolume(samples)
	require.Len(t, weeks, 10)
	assert.Equal(t, "2025-01-20", weeks[0].WeekStart)
	assert.Equal(t, "2025-03-24", weeks[9].WeekStart)
}

func TestWeeklySpeedZonesUsesTrailingWindow(t *testing.T) {
	store := &fakeStore{speed: run(1, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), 11, 4)}
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, store, WithClock(func() time.Time { return now }))

	weeks, err := svc.WeeklySpeedZones(context.Background())
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, "2025-01-09", store.speedSince.Format(models.DateLayout))
}

func TestWeeklySpeedZonesEmpty(t *testing.T) {
	svc := newTestService(t, &fakeStore{})
	weeks, err := svc.WeeklySpeedZones(context.Background())
	require.NoError(t, err)
	assert.Empty(t, weeks)
}

func TestResolveRange(t *testing.T) {
	today := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	from, to, err := ResolveRange("", "", "", today)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", from.Format(models.DateLayout))
	assert.Equal(t, "2025-03-16", to.Format(models.DateLayout))

	from, to, err = ResolveRange(PeriodYear, "2024-05-01", "2024-05-31", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", from.Format(models.DateLayout))
	assert.Equal(t, "2024-05-31", to.Format(models.DateLayout))

	_, _, err = ResolveRange("", "2024-05-01", "", today)
	assert.Error(t, err)
	_, _, err = ResolveRange("", "2024-05-31", "2024-05-01", today)
	assert.Error(t, err)
	_, _, err = ResolveRange("", "yesterday", "2024-05-01", today)
	assert.Error(t, err)
}
