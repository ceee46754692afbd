// ABOUTME: Training stress engine: time in zone, zTRIMP and perception multiplier.
// ABOUTME: Rolls activity scores up into per-day totals.
package stress

import (
	"sort"
	"time"

	"github.com/harperreed/trainload/internal/models"
	"github.com/harperreed/trainload/internal/zones"
)

// ActivityInput is everything needed to score one activity.
type ActivityInput struct {
	ActivityID int64
	StartTime  time.Time
	RPE        *float64
	Feel       *float64
	HeartRates []float64
}

// ActivityScore is the derived load of one activity.
type ActivityScore struct {
	ActivityID  int64
	Date        string
	Minutes     map[zones.Zone]float64
	ZTRIMP      float64
	Multiplier  float64
	StressScore float64
}

// DailyScore is the summed stress of all scored activities on one UTC date.
type DailyScore struct {
	Date        string  `json:"date" yaml:"date"`
	StressScore float64 `json:"stress_score" yaml:"stress_score"`
	Activities  int     `json:"activities" yaml:"activities"`
}

// TimeInZone counts samples per heart-rate zone, one sample per second.
// Samples outside every zone are ignored. Only zones with samples are present.
func TimeInZone(heartRates []float64) map[zones.Zone]float64 {
	counts := make(map[zones.Zone]int)
	for _, hr := range heartRates {
		if z, ok := zones.HeartRateZone(hr); ok {
			counts[z]++
		}
	}
	minutes := make(map[zones.Zone]float64, len(counts))
	for z, n := range counts {
		minutes[z] = float64(n) / 60
	}
	return minutes
}

// ZTRIMP weights minutes in each zone by the zone number.
func ZTRIMP(minutes map[zones.Zone]float64) float64 {
	var total float64
	for _, z := range zones.All() {
		total += minutes[z] * z.Weight()
	}
	return total
}

// RPEMultiplier maps rated perceived exertion (0-10) to a load factor.
func RPEMultiplier(rpe float64) float64 {
	switch {
	case rpe <= 4:
		return 0.9
	case rpe <= 6:
		return 1.0
	case rpe <= 8:
		return 1.15
	default:
		return 1.3
	}
}

// FeelAdjustment maps the 0-100 feel rating to an additive correction.
// A low feel means the session felt hard.
func FeelAdjustment(feel float64) float64 {
	switch {
	case feel <= 30:
		return 0.1
	case feel >= 70:
		return -0.1
	default:
		return 0
	}
}

// PerceptionMultiplier combines RPE and feel.
func PerceptionMultiplier(rpe, feel float64) float64 {
	return RPEMultiplier(rpe) + FeelAdjustment(feel)
}

// ScoreActivity returns the stress score of one activity. ok is false when the
// activity has no heart-rate samples or is missing rpe or feel. An activity whose
// samples all fall outside every zone scores 0.
func ScoreActivity(in ActivityInput) (ActivityScore, bool) {
	if in.RPE == nil || in.Feel == nil || len(in.HeartRates) == 0 {
		return ActivityScore{}, false
	}
	minutes := TimeInZone(in.HeartRates)

	trimp := ZTRIMP(minutes)
	mult := PerceptionMultiplier(*in.RPE, *in.Feel)
	return ActivityScore{
		ActivityID:  in.ActivityID,
		Date:        in.StartTime.UTC().Format(models.DateLayout),
		Minutes:     minutes,
		ZTRIMP:      trimp,
		Multiplier:  mult,
		StressScore: trimp * mult,
	}, true
}

// DailyScores scores every input and sums by UTC start date, ascending.
// Dates with no scored activity are absent.
func DailyScores(inputs []ActivityInput) []DailyScore {
	byDate := make(map[string]*DailyScore)
	for _, in := range inputs {
		score, ok := ScoreActivity(in)
		if !ok {
			continue
		}
		d, exists := byDate[score.Date]
		if !exists {
			d = &DailyScore{Date: score.Date}
			byDate[score.Date] = d
		}
		d.StressScore += score.StressScore
		d.Activities++
	}

	out := make([]DailyScore, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
