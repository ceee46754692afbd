// ABOUTME: Weekly running distance per speed zone over a trailing window.
// ABOUTME: Weeks start on Monday; distance comes from cumulative-distance deltas.
package query

import (
	"context"
	"sort"
	"time"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/storage"
	"github.com/harperreed/trainload/internal/zones"
)

const (
	speedZoneSport = "running"
	speedZoneDays  = 70
	speedZoneWeeks = 10
)

// ZoneDistance is the distance covered in one zone.
type ZoneDistance struct {
	Zone       zones.Zone `json:"-" yaml:"-"`
	Label      string     `json:"zone" yaml:"zone"`
	DistanceKm float64    `json:"distance_km" yaml:"distance_km"`
}

// WeekVolume is one Monday-start week with every zone listed in order.
type WeekVolume struct {
	WeekStart string         `json:"week_start" yaml:"week_start"`
	Zones     []ZoneDistance `json:"zones" yaml:"zones"`
	TotalKm   float64        `json:"total_km" yaml:"total_km"`
}

// WeeklySpeedZones returns running distance per speed zone for the most
// recent ten weeks that have data within the last 70 days. The window is
// relative to the service clock, not to any date filter.
func (s *Service) WeeklySpeedZones(ctx context.Context) ([]WeekVolume, error) {
	since := s.now().UTC().AddDate(0, 0, -speedZoneDays)
	since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.UTC)
	key := "weekly_speed_zones|" + since.Format(models.DateLayout)

	return cached(s, key, func() ([]WeekVolume, error) {
		samples, err := s.store.ListSpeedSamples(ctx, speedZoneSport, since)
		if err != nil {
			return nil, err
		}
		return WeeklyVolume(samples), nil
	})
}

// WeeklyVolume aggregates samples, which must be ordered by activity then
// timestamp, into weekly zone distances. Each sample contributes the change
// in cumulative distance since the previous sample of the same activity;
// the first sample of an activity, or a pair with a missing distance,
// contributes nothing. Samples without speed or outside every zone are
// ignored. Only the latest ten weeks are returned, oldest first.
func WeeklyVolume(samples []storage.SpeedSample) []WeekVolume {
	weeks := make(map[string]*[zones.Count]float64)

	var prev *storage.SpeedSample
	for i := range samples {
		cur := &samples[i]
		delta := 0.0
		if prev != nil && prev.ActivityID == cur.ActivityID && prev.DistanceM != nil && cur.DistanceM != nil {
			delta = *cur.DistanceM - *prev.DistanceM
		}
		prev = cur

		if cur.SpeedMPS == nil {
			continue
		}
		z, ok := zones.SpeedZoneMPS(*cur.SpeedMPS)
		if !ok {
			continue
		}
		week := WeekStart(cur.Timestamp).Format(models.DateLayout)
		bucket, ok := weeks[week]
		if !ok {
			bucket = new([zones.Count]float64)
			weeks[week] = bucket
		}
		bucket[z.Index()] += delta
	}

	keys := make([]string, 0, len(weeks))
	for k := range weeks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > speedZoneWeeks {
		keys = keys[len(keys)-speedZoneWeeks:]
	}

	out := make([]WeekVolume, 0, len(keys))
	for _, k := range keys {
		wv := WeekVolume{WeekStart: k}
		for _, z := range zones.All() {
			km := weeks[k][z.Index()] / 1000
			wv.Zones = append(wv.Zones, ZoneDistance{Zone: z, Label: z.Label(), DistanceKm: km})
			wv.TotalKm += km
		}
		out = append(out, wv)
	}
	return out
}

// WeekStart returns the Monday (UTC) of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
