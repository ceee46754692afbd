// ABOUTME: Extracts activity, lap and sample rows from FIT activity files.
// ABOUTME: Invalid FIT sentinels become absent values, never zeros.
package fitfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/tormoder/fit"

	"github.com/harperreed/trainload/internal/models"
)

var (
	// ErrParse marks a file that could not be decoded as a FIT activity.
	ErrParse = errors.New("unparseable FIT file")
	// ErrMissingIdentity marks a file with neither a session nor a lap start time.
	ErrMissingIdentity = fmt.Errorf("%w: no start time to derive activity id", ErrParse)
)

// Bundle is the extracted content of one activity file.
type Bundle struct {
	Activity models.Activity
	Laps     []models.Lap
	Samples  []models.Sample
}

// Extractor turns FIT files into model rows.
type Extractor struct {
	aliases *AliasTable
	logger  *log.Logger
}

// NewExtractor creates an extractor. A nil table uses DefaultAliases and a nil
// logger discards output.
func NewExtractor(aliases *AliasTable, logger *log.Logger) *Extractor {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Extractor{aliases: aliases, logger: logger}
}

// Extract reads and decodes the file at path.
func (e *Extractor) Extract(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrParse, path, err)
	}
	b, err := e.ExtractBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ExtractBytes decodes an in-memory FIT file.
func (e *Extractor) ExtractBytes(data []byte) (*Bundle, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrParse, err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("%w: not an activity file: %v", ErrParse, err)
	}

	var session *fit.SessionMsg
	if len(activity.Sessions) > 0 {
		session = activity.Sessions[0]
	}

	start := time.Time{}
	if session != nil {
		start = validTimeOrZero(session.StartTime)
	}
	if start.IsZero() && len(activity.Laps) > 0 {
		start = validTimeOrZero(activity.Laps[0].StartTime)
	}
	if start.IsZero() {
		return nil, ErrMissingIdentity
	}
	start = start.UTC().Truncate(time.Second)
	id := models.ActivityIDFromTime(start)

	b := &Bundle{Activity: models.Activity{ID: id, StartTime: start}}
	if session != nil {
		fillSession(&b.Activity, session)
	}
	e.applyAliases(&b.Activity, data)

	for i, lap := range activity.Laps {
		b.Laps = append(b.Laps, convertLap(id, i+1, lap))
	}

	for _, rec := range activity.Records {
		s, ok := convertRecord(id, rec)
		if !ok {
			continue
		}
		s.RecordNumber = len(b.Samples) + 1
		b.Samples = append(b.Samples, s)
	}

	return b, nil
}

func (e *Extractor) applyAliases(a *models.Activity, data []byte) {
	values, err := scanSessionFields(data, e.aliases.Fields())
	if err != nil {
		e.logger.Warn("session field scan failed", "activity_id", a.ID, "err", err)
		return
	}
	for field, raw := range values {
		alias, ok := e.aliases.lookup(field)
		if !ok {
			continue
		}
		scale := alias.Scale
		if scale == 0 {
			scale = 1
		}
		v := raw / scale
		if alias.Min != alias.Max && (v < alias.Min || v > alias.Max) {
			e.logger.Warn("alias value out of range",
				"activity_id", a.ID, "field", field, "name", alias.Name,
				"value", v, "table", e.aliases.Version)
		}
		switch alias.Name {
		case AliasRPE:
			a.RPE = models.Float(v)
		case AliasFeel:
			a.Feel = models.Float(v)
		}
	}
}

func fillSession(a *models.Activity, s *fit.SessionMsg) {
	if s.Sport != fit.SportInvalid {
		a.Sport = models.String(snakeCase(fmt.Sprint(s.Sport)))
	}
	a.DistanceM = finite(s.GetTotalDistanceScaled())
	a.TotalElapsedTimeS = finite(s.GetTotalElapsedTimeScaled())
	a.TotalTimerTimeS = finite(s.GetTotalTimerTimeScaled())
	a.Calories = validUint16(s.TotalCalories)
	a.AvgHR = validUint8(s.AvgHeartRate)
	a.MaxHR = validUint8(s.MaxHeartRate)
	a.AvgCadence = cadenceFromAny(s.GetAvgCadence())
	a.TotalAscentM = validUint16(s.TotalAscent)
	a.TotalDescentM = validUint16(s.TotalDescent)
	if s.NumLaps != math.MaxUint16 {
		a.NumLaps = models.Int(int(s.NumLaps))
	}
}

func convertLap(activityID int64, number int, l *fit.LapMsg) models.Lap {
	lap := models.Lap{
		ActivityID:        activityID,
		Number:            number,
		DistanceM:         finite(l.GetTotalDistanceScaled()),
		TotalElapsedTimeS: finite(l.GetTotalElapsedTimeScaled()),
		TotalTimerTimeS:   finite(l.GetTotalTimerTimeScaled()),
		AvgHR:             validUint8(l.AvgHeartRate),
		MaxHR:             validUint8(l.MaxHeartRate),
		Calories:          validUint16(l.TotalCalories),
		AvgCadence:        cadenceFromAny(l.GetAvgCadence()),
	}
	if t := validTimeOrZero(l.StartTime); !t.IsZero() {
		t = t.UTC()
		lap.StartTime = &t
	}
	if l.LapTrigger != fit.LapTriggerInvalid {
		lap.Trigger = models.String(snakeCase(fmt.Sprint(l.LapTrigger)))
	}
	return lap
}

// convertRecord returns false for records that cannot be keyed or carry nothing.
func convertRecord(activityID int64, r *fit.RecordMsg) (models.Sample, bool) {
	ts := validTimeOrZero(r.Timestamp)
	if ts.IsZero() {
		return models.Sample{}, false
	}
	s := models.Sample{ActivityID: activityID, Timestamp: ts.UTC().Truncate(time.Second)}
	if r.HeartRate != math.MaxUint8 {
		s.HeartRate = models.Int(int(r.HeartRate))
	}
	if r.Cadence != math.MaxUint8 {
		s.Cadence = models.Int(int(r.Cadence))
	}
	if r.Power != math.MaxUint16 {
		s.Power = models.Int(int(r.Power))
	}
	s.DistanceM = finite(r.GetDistanceScaled())
	s.SpeedMPS = finite(r.GetEnhancedSpeedScaled())
	if s.SpeedMPS == nil {
		s.SpeedMPS = finite(r.GetSpeedScaled())
	}
	s.AltitudeM = finite(r.GetEnhancedAltitudeScaled())
	if s.AltitudeM == nil {
		s.AltitudeM = finite(r.GetAltitudeScaled())
	}
	return s, true
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint8(v uint8) *float64 {
	if v == math.MaxUint8 {
		return nil
	}
	return models.Float(float64(v))
}

func validUint16(v uint16) *float64 {
	if v == math.MaxUint16 {
		return nil
	}
	return models.Float(float64(v))
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return models.Float(v)
}

func cadenceFromAny(v any) *float64 {
	switch x := v.(type) {
	case uint8:
		return validUint8(x)
	case uint16:
		return validUint16(x)
	case float64:
		return finite(x)
	default:
		return nil
	}
}

// snakeCase turns profile names like "FitnessEquipment" into "fitness_equipment".
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
