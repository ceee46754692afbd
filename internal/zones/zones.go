// ABOUTME: Heart-rate and speed zone classification into Z1..Z5.
// ABOUTME: Boundaries and labels are fixed domain constants.
package zones

import "math"

// Zone is an ordered training intensity zone. Z1 is the lowest.
type Zone int

const (
	Z1 Zone = iota + 1
	Z2
	Z3
	Z4
	Z5
)

// Count is the number of zones.
const Count = 5

var labels = map[Zone]string{
	Z1: "Z1 - Endurance",
	Z2: "Z2 - Marathon",
	Z3: "Z3 - Seuil",
	Z4: "Z4 - VMA",
	Z5: "Z5 - Max",
}

// HeartRateBins are bpm edges. A value belongs to (lo, hi].
var HeartRateBins = [6]float64{0, 153, 173, 188, 195, 204}

// SpeedBins are km/h edges. A value belongs to [lo, hi); 30 and above have no zone.
var SpeedBins = [6]float64{0, 13, 16, 19, 21, 30}

// All returns the zones in canonical order.
func All() []Zone {
	return []Zone{Z1, Z2, Z3, Z4, Z5}
}

// Label returns the display label, e.g. "Z3 - Seuil".
func (z Zone) Label() string {
	if !z.Valid() {
		return "unknown"
	}
	return labels[z]
}

// String implements fmt.Stringer.
func (z Zone) String() string {
	return z.Label()
}

// Weight is the zTRIMP multiplier of the zone (1..5).
func (z Zone) Weight() float64 {
	return float64(z)
}

// Index is the 0-based position of the zone in All().
func (z Zone) Index() int {
	return int(z) - 1
}

// Valid reports whether z is one of Z1..Z5.
func (z Zone) Valid() bool {
	return z >= Z1 && z <= Z5
}

// HeartRateZone classifies a bpm value. Values <= 0 or > 204 have no zone.
func HeartRateZone(bpm float64) (Zone, bool) {
	if math.IsNaN(bpm) {
		return 0, false
	}
	for i := 1; i < len(HeartRateBins); i++ {
		if bpm > HeartRateBins[i-1] && bpm <= HeartRateBins[i] {
			return Zone(i), true
		}
	}
	return 0, false
}

// SpeedZone classifies a km/h value. Values < 0 or >= 30 have no zone.
func SpeedZone(kmh float64) (Zone, bool) {
	if math.IsNaN(kmh) {
		return 0, false
	}
	for i := 1; i < len(SpeedBins); i++ {
		if kmh >= SpeedBins[i-1] && kmh < SpeedBins[i] {
			return Zone(i), true
		}
	}
	return 0, false
}

// SpeedZoneMPS classifies a speed given in metres per second.
func SpeedZoneMPS(mps float64) (Zone, bool) {
	return SpeedZone(mps * 3.6)
}
