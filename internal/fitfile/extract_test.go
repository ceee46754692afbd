// ABOUTME: Tests for FIT extraction using assembled fixture files.
// ABOUTME: Covers identity derivation, sentinel handling and alias fields.
package fitfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tormoder/fit"

	"github.com/harperreed/trainload/internal/testsupport"
)

var fixtureStart = time.Date(2025, 3, 9, 7, 5, 3, 0, time.UTC)

func TestExtractActivity(t *testing.T) {
	data := testsupport.BuildActivity(testsupport.SteadyRun(fixtureStart, 120, 150, 3.5, 7, 20))

	b, err := NewExtractor(nil, nil).ExtractBytes(data)
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}

	a := b.Activity
	if a.ID != 20250309070503 {
		t.Errorf("ID = %d, want 20250309070503", a.ID)
	}
	if !a.StartTime.Equal(fixtureStart) {
		t.Errorf("StartTime = %v", a.StartTime)
	}
	if a.SportName() != "running" {
		t.Errorf("Sport = %q, want running", a.SportName())
	}
	if a.DistanceM == nil || *a.DistanceM != 420 {
		t.Errorf("DistanceM = %v, want 420", a.DistanceM)
	}
	if a.TotalTimerTimeS == nil || *a.TotalTimerTimeS != 120 {
		t.Errorf("TotalTimerTimeS = %v, want 120", a.TotalTimerTimeS)
	}
	if a.AvgHR == nil || *a.AvgHR != 150 {
		t.Errorf("AvgHR = %v, want 150", a.AvgHR)
	}
	if a.NumLaps == nil || *a.NumLaps != 1 {
		t.Errorf("NumLaps = %v, want 1", a.NumLaps)
	}
	if a.RPE == nil || *a.RPE != 7 {
		t.Errorf("RPE = %v, want 7", a.RPE)
	}
	if a.Feel == nil || *a.Feel != 20 {
		t.Errorf("Feel = %v, want 20", a.Feel)
	}
	if a.Calories != nil {
		t.Errorf("Calories = %v, want absent", *a.Calories)
	}

	if len(b.Laps) != 1 {
		t.Fatalf("got %d laps, want 1", len(b.Laps))
	}
	lap := b.Laps[0]
	if lap.Number != 1 || lap.ActivityID != a.ID {
		t.Errorf("lap key = (%d, %d)", lap.ActivityID, lap.Number)
	}
	if lap.Trigger == nil || *lap.Trigger != "session_end" {
		t.Errorf("lap trigger = %v, want session_end", lap.Trigger)
	}
	if lap.StartTime == nil || !lap.StartTime.Equal(fixtureStart) {
		t.Errorf("lap start = %v", lap.StartTime)
	}

	if len(b.Samples) != 120 {
		t.Fatalf("got %d samples, want 120", len(b.Samples))
	}
	first, last := b.Samples[0], b.Samples[119]
	if first.RecordNumber != 1 || last.RecordNumber != 120 {
		t.Errorf("record numbers = %d..%d", first.RecordNumber, last.RecordNumber)
	}
	if first.HeartRate == nil || *first.HeartRate != 150 {
		t.Errorf("heart rate = %v", first.HeartRate)
	}
	if last.SpeedMPS == nil || *last.SpeedMPS != 3.5 {
		t.Errorf("speed = %v, want 3.5", last.SpeedMPS)
	}
	if !last.Timestamp.Equal(fixtureStart.Add(119 * time.Second)) {
		t.Errorf("last timestamp = %v", last.Timestamp)
	}
	if first.Power != nil || first.Cadence != nil {
		t.Error("absent record fields should be nil")
	}
}

func TestExtractKeepsTimestampOnlySamples(t *testing.T) {
	run := testsupport.SteadyRun(fixtureStart, 3, 140, 3, 5, 50)
	run.Records = append(run.Records,
		testsupport.Record{Time: time.Time{}, HeartRate: 150, DistanceM: 10, SpeedMPS: 3},
		testsupport.Record{Time: fixtureStart.Add(10 * time.Second), HeartRate: -1, DistanceM: -1, SpeedMPS: -1},
		testsupport.Record{Time: fixtureStart.Add(11 * time.Second), HeartRate: 160, DistanceM: -1, SpeedMPS: -1},
	)

	b, err := NewExtractor(nil, nil).ExtractBytes(testsupport.BuildActivity(run))
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}
	if len(b.Samples) != 5 {
		t.Fatalf("got %d samples, want 5", len(b.Samples))
	}

	bare := b.Samples[3]
	if !bare.Timestamp.Equal(fixtureStart.Add(10 * time.Second)) {
		t.Errorf("timestamp-only sample at %v", bare.Timestamp)
	}
	if bare.RecordNumber != 4 {
		t.Errorf("record number = %d, want 4", bare.RecordNumber)
	}
	if bare.HeartRate != nil || bare.DistanceM != nil || bare.SpeedMPS != nil {
		t.Error("timestamp-only sample must carry no measurements")
	}

	hrOnly := b.Samples[4]
	if hrOnly.RecordNumber != 5 {
		t.Errorf("record number = %d, want 5", hrOnly.RecordNumber)
	}
	if hrOnly.DistanceM != nil || hrOnly.SpeedMPS != nil {
		t.Error("invalid distance/speed must be absent, not zero")
	}
}

func TestExtractFallsBackToLapStart(t *testing.T) {
	run := testsupport.SteadyRun(fixtureStart, 10, 140, 3, 5, 50)
	run.OmitSession = true

	b, err := NewExtractor(nil, nil).ExtractBytes(testsupport.BuildActivity(run))
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}
	if b.Activity.ID != 20250309070503 {
		t.Errorf("ID = %d", b.Activity.ID)
	}
	if b.Activity.Sport != nil || b.Activity.RPE != nil {
		t.Error("session attributes should be absent without a session")
	}
}

func TestExtractMissingIdentity(t *testing.T) {
	run := testsupport.SteadyRun(fixtureStart, 10, 140, 3, 5, 50)
	run.OmitSession = true
	run.Laps = nil

	_, err := NewExtractor(nil, nil).ExtractBytes(testsupport.BuildActivity(run))
	if !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("err = %v, want ErrMissingIdentity", err)
	}
	if !errors.Is(err, ErrParse) {
		t.Error("ErrMissingIdentity should also match ErrParse")
	}
}

func TestExtractGarbage(t *testing.T) {
	_, err := NewExtractor(nil, nil).ExtractBytes([]byte("definitely not a fit file"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}

	_, err = NewExtractor(nil, nil).Extract(filepath.Join(t.TempDir(), "missing.fit"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("missing file err = %v, want ErrParse", err)
	}
}

func TestExtractWithoutPerception(t *testing.T) {
	run := testsupport.SteadyRun(fixtureStart, 10, 140, 3, 5, 50)
	run.RPE, run.Feel = nil, nil

	b, err := NewExtractor(nil, nil).ExtractBytes(testsupport.BuildActivity(run))
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}
	if b.Activity.RPE != nil || b.Activity.Feel != nil {
		t.Errorf("RPE/Feel = %v/%v, want absent", b.Activity.RPE, b.Activity.Feel)
	}
}

func TestExtractOutOfRangeAliasIsKept(t *testing.T) {
	run := testsupport.SteadyRun(fixtureStart, 10, 140, 3, 15, 50)

	b, err := NewExtractor(nil, nil).ExtractBytes(testsupport.BuildActivity(run))
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}
	if b.Activity.RPE == nil || *b.Activity.RPE != 15 {
		t.Errorf("RPE = %v, want 15", b.Activity.RPE)
	}
}

func TestExtractCustomAliasTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	yaml := `version: swapped-v1
session:
  - field: 192
    name: rpe
    scale: 10
    min: 0
    max: 10
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := LoadAliases(path)
	if err != nil {
		t.Fatalf("LoadAliases failed: %v", err)
	}

	run := testsupport.SteadyRun(fixtureStart, 10, 140, 3, 9, 80)
	b, err := NewExtractor(table, nil).ExtractBytes(testsupport.BuildActivity(run))
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}
	if b.Activity.RPE == nil || *b.Activity.RPE != 8 {
		t.Errorf("RPE = %v, want 8", b.Activity.RPE)
	}
	if b.Activity.Feel != nil {
		t.Errorf("Feel = %v, want absent", *b.Activity.Feel)
	}
}

func TestExtractEncoderOutput(t *testing.T) {
	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}
	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	start := time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)
	session := fit.NewSessionMsg()
	session.StartTime = start
	session.Timestamp = start.Add(time.Minute)
	session.Sport = fit.SportCycling
	activity.Sessions = append(activity.Sessions, session)

	record := fit.NewRecordMsg()
	record.Timestamp = start.Add(30 * time.Second)
	record.HeartRate = 135
	record.Power = 245
	record.Cadence = 92
	activity.Records = append(activity.Records, record)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}

	b, err := NewExtractor(nil, nil).ExtractBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractBytes failed: %v", err)
	}
	if b.Activity.ID != 20260226230000 {
		t.Errorf("ID = %d", b.Activity.ID)
	}
	if b.Activity.SportName() != "cycling" {
		t.Errorf("Sport = %q", b.Activity.SportName())
	}
	if b.Activity.RPE != nil {
		t.Error("RPE should be absent")
	}
	if len(b.Samples) != 1 {
		t.Fatalf("got %d samples", len(b.Samples))
	}
	s := b.Samples[0]
	if s.Power == nil || *s.Power != 245 || s.Cadence == nil || *s.Cadence != 92 {
		t.Errorf("sample = %+v", s)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Running":          "running",
		"FitnessEquipment": "fitness_equipment",
		"SessionEnd":       "session_end",
		"PositionStart":    "position_start",
	}
	for in, want := range tests {
		if got := snakeCase(in); got != want {
			t.Errorf("snakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
