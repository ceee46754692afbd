// ABOUTME: Helpers that write fixture FIT and sleep files into temp directories.
// ABOUTME: Shared by importer, storage and CLI tests.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data under dir and returns the full path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// SleepJSON renders a minimal sleep export for the given date.
func SleepJSON(date string, totalSeconds, score int) []byte {
	return []byte(fmt.Sprintf(`{
  "dailySleepDTO": {
    "calendarDate": %q,
    "sleepTimeSeconds": %d,
    "deepSleepSeconds": 5400,
    "lightSleepSeconds": 14400,
    "remSleepSeconds": 6000,
    "awakeSleepSeconds": 900,
    "avgSleepStress": 14.5,
    "sleepScores": {"overall": {"value": %d, "qualifierKey": "GOOD"}}
  },
  "avgOvernightHrv": 61.0,
  "restingHeartRate": 47
}`, date, totalSeconds, score))
}
