// ABOUTME: Hand-assembled FIT activity files for tests.
// ABOUTME: Writes raw definition/data records so undocumented session fields can be included.
package testsupport

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"github.com/tormoder/fit/dyncrc16"
)

// FIT base type bytes.
const (
	BaseEnum   uint8 = 0x00
	BaseUint8  uint8 = 0x02
	BaseUint16 uint8 = 0x84
	BaseUint32 uint8 = 0x86
)

// Global message numbers.
const (
	MesgFileID  uint16 = 0
	MesgSession uint16 = 18
	MesgLap     uint16 = 19
	MesgRecord  uint16 = 20
)

// Profile enum values used by fixtures.
const (
	SportRunning         uint8 = 1
	SportCycling         uint8 = 2
	LapTriggerManual     uint8 = 0
	LapTriggerDistance   uint8 = 2
	LapTriggerSessionEnd uint8 = 7
)

var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// Field is one entry of a definition message.
type Field struct {
	Num  uint8
	Size uint8
	Base uint8
}

// Encoder accumulates FIT records and emits a complete file.
type Encoder struct {
	body bytes.Buffer
}

// Define writes a definition message. devSizes adds developer fields of the given sizes.
func (e *Encoder) Define(local uint8, global uint16, fields []Field, devSizes ...uint8) {
	header := 0x40 | (local & 0x0F)
	if len(devSizes) > 0 {
		header |= 0x20
	}
	e.body.WriteByte(header)
	e.body.WriteByte(0) // reserved
	e.body.WriteByte(0) // little endian
	_ = binary.Write(&e.body, binary.LittleEndian, global)
	e.body.WriteByte(uint8(len(fields)))
	for _, f := range fields {
		e.body.Write([]byte{f.Num, f.Size, f.Base})
	}
	if len(devSizes) > 0 {
		e.body.WriteByte(uint8(len(devSizes)))
		for i, s := range devSizes {
			e.body.Write([]byte{uint8(i), s, 0})
		}
	}
}

// Data writes a normal-header data message.
func (e *Encoder) Data(local uint8, values ...[]byte) {
	e.body.WriteByte(local & 0x0F)
	for _, v := range values {
		e.body.Write(v)
	}
}

// CompressedData writes a compressed-timestamp data message (local types 0-3).
func (e *Encoder) CompressedData(local, offset uint8, values ...[]byte) {
	e.body.WriteByte(0x80 | (local&0x03)<<5 | (offset & 0x1F))
	for _, v := range values {
		e.body.Write(v)
	}
}

// Bytes returns header, records and trailing file CRC.
func (e *Encoder) Bytes() []byte {
	header := make([]byte, 14)
	header[0] = 14
	header[1] = 0x20
	binary.LittleEndian.PutUint16(header[2:4], 2132)
	binary.LittleEndian.PutUint32(header[4:8], uint32(e.body.Len()))
	copy(header[8:12], ".FIT")
	binary.LittleEndian.PutUint16(header[12:14], dyncrc16.Checksum(header[:12]))

	out := append(header, e.body.Bytes()...)
	crc := make([]byte, 2)
	binary.LittleEndian.PutUint16(crc, dyncrc16.Checksum(out))
	return append(out, crc...)
}

// U8 encodes one byte.
func U8(v uint8) []byte { return []byte{v} }

// U16 encodes a little-endian uint16.
func U16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// U32 encodes a little-endian uint32.
func U32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// Timestamp encodes t as FIT seconds; the zero time encodes as invalid.
func Timestamp(t time.Time) []byte {
	if t.IsZero() {
		return U32(math.MaxUint32)
	}
	return U32(uint32(t.UTC().Sub(fitEpoch) / time.Second))
}

// Scaled encodes v*scale as uint32; negative v encodes as invalid.
func Scaled(v, scale float64) []byte {
	if v < 0 {
		return U32(math.MaxUint32)
	}
	return U32(uint32(math.Round(v * scale)))
}

// Record is one fixture sample. Negative numbers mean absent.
type Record struct {
	Time      time.Time
	HeartRate int
	DistanceM float64
	SpeedMPS  float64
}

// Lap is one fixture lap.
type Lap struct {
	Start     time.Time
	ElapsedS  float64
	DistanceM float64
	AvgHR     int
	Trigger   uint8
}

// Activity describes a fixture file. A zero Start writes an invalid session start time.
type Activity struct {
	Start       time.Time
	Sport       uint8
	ElapsedS    float64
	DistanceM   float64
	AvgHR       int
	RPE         *uint8
	Feel        *uint8
	OmitSession bool
	Laps        []Lap
	Records     []Record
}

func optU8(v int) []byte {
	if v < 0 || v > 254 {
		return U8(0xFF)
	}
	return U8(uint8(v))
}

// BuildActivity encodes an activity with file_id, records, laps and a trailing session.
func BuildActivity(a Activity) []byte {
	var e Encoder

	e.Define(0, MesgFileID, []Field{{0, 1, BaseEnum}})
	e.Data(0, U8(4))

	e.Define(1, MesgRecord, []Field{
		{253, 4, BaseUint32},
		{3, 1, BaseUint8},
		{5, 4, BaseUint32},
		{73, 4, BaseUint32},
	})
	for _, r := range a.Records {
		e.Data(1, Timestamp(r.Time), optU8(r.HeartRate), Scaled(r.DistanceM, 100), Scaled(r.SpeedMPS, 1000))
	}

	e.Define(2, MesgLap, []Field{
		{253, 4, BaseUint32},
		{2, 4, BaseUint32},
		{7, 4, BaseUint32},
		{8, 4, BaseUint32},
		{9, 4, BaseUint32},
		{15, 1, BaseUint8},
		{24, 1, BaseEnum},
	})
	for _, l := range a.Laps {
		end := l.Start.Add(time.Duration(l.ElapsedS * float64(time.Second)))
		e.Data(2, Timestamp(end), Timestamp(l.Start), Scaled(l.ElapsedS, 1000), Scaled(l.ElapsedS, 1000),
			Scaled(l.DistanceM, 100), optU8(l.AvgHR), U8(l.Trigger))
	}

	if !a.OmitSession {
		e.Define(3, MesgSession, []Field{
			{253, 4, BaseUint32},
			{2, 4, BaseUint32},
			{5, 1, BaseEnum},
			{7, 4, BaseUint32},
			{8, 4, BaseUint32},
			{9, 4, BaseUint32},
			{16, 1, BaseUint8},
			{26, 2, BaseUint16},
			{192, 1, BaseUint8},
			{193, 1, BaseUint8},
		})
		end := a.Start
		if !end.IsZero() {
			end = end.Add(time.Duration(a.ElapsedS * float64(time.Second)))
		}
		feel, rpe := U8(0xFF), U8(0xFF)
		if a.Feel != nil {
			feel = U8(*a.Feel)
		}
		if a.RPE != nil {
			rpe = U8(*a.RPE)
		}
		e.Data(3, Timestamp(end), Timestamp(a.Start), U8(a.Sport), Scaled(a.ElapsedS, 1000), Scaled(a.ElapsedS, 1000),
			Scaled(a.DistanceM, 100), optU8(a.AvgHR), U16(uint16(len(a.Laps))), feel, rpe)
	}

	return e.Bytes()
}

// Uint8Ptr returns a pointer to v.
func Uint8Ptr(v uint8) *uint8 { return &v }

// SteadyRun returns a fixture with n one-second samples at constant heart rate and speed.
func SteadyRun(start time.Time, n int, hr int, speedMPS float64, rpe, feel uint8) Activity {
	a := Activity{
		Start:     start,
		Sport:     SportRunning,
		ElapsedS:  float64(n),
		DistanceM: float64(n) * speedMPS,
		AvgHR:     hr,
		RPE:       Uint8Ptr(rpe),
		Feel:      Uint8Ptr(feel),
	}
	for i := 0; i < n; i++ {
		a.Records = append(a.Records, Record{
			Time:      start.Add(time.Duration(i) * time.Second),
			HeartRate: hr,
			DistanceM: float64(i) * speedMPS,
			SpeedMPS:  speedMPS,
		})
	}
	a.Laps = []Lap{{Start: start, ElapsedS: float64(n), DistanceM: a.DistanceM, AvgHR: hr, Trigger: LapTriggerSessionEnd}}
	return a
}
