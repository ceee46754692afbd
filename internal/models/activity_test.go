// ABOUTME: Tests for activity id derivation and timestamp helpers.
// ABOUTME: Ensures ids are 14-digit UTC renderings of the start time.
package models

import (
	"testing"
	"time"
)

func TestActivityIDFromTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want int64
	}{
		{
			name: "utc start",
			in:   time.Date(2025, 3, 9, 7, 5, 3, 0, time.UTC),
			want: 20250309070503,
		},
		{
			name: "offset start converted to utc",
			in:   time.Date(2025, 3, 9, 9, 5, 3, 0, time.FixedZone("CEST", 2*3600)),
			want: 20250309070503,
		},
		{
			name: "sub-second precision dropped",
			in:   time.Date(2024, 12, 31, 23, 59, 59, 999, time.UTC),
			want: 20241231235959,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActivityIDFromTime(tt.in); got != tt.want {
				t.Errorf("ActivityIDFromTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestActivityIDTimeRoundTrip(t *testing.T) {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := ActivityIDTime(ActivityIDFromTime(start))
	if err != nil {
		t.Fatalf("ActivityIDTime failed: %v", err)
	}
	if !got.Equal(start) {
		t.Errorf("got %v, want %v", got, start)
	}

	if _, err := ActivityIDTime(42); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestTimestampOrdering(t *testing.T) {
	early := FormatTimestamp(time.Date(2025, 1, 9, 23, 0, 0, 0, time.UTC))
	late := FormatTimestamp(time.Date(2025, 1, 10, 1, 0, 0, 0, time.UTC))
	if !(early < late) {
		t.Errorf("expected %q < %q", early, late)
	}

	parsed, err := ParseTimestamp(late)
	if err != nil {
		t.Fatalf("ParseTimestamp failed: %v", err)
	}
	if parsed.Hour() != 1 {
		t.Errorf("hour = %d, want 1", parsed.Hour())
	}
}

func TestActivityDate(t *testing.T) {
	a := &Activity{StartTime: time.Date(2025, 5, 1, 23, 30, 0, 0, time.UTC)}
	if a.Date() != "2025-05-01" {
		t.Errorf("Date() = %q", a.Date())
	}
	if a.SportName() != "" {
		t.Errorf("SportName() = %q, want empty", a.SportName())
	}
}
