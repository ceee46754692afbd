// ABOUTME: Tests for zone classification boundaries.
// ABOUTME: Covers inclusive/exclusive edges for heart rate and speed.
package zones

import "testing"

func TestHeartRateZone(t *testing.T) {
	tests := []struct {
		bpm    float64
		want   Zone
		wantOK bool
	}{
		{0, 0, false},
		{-5, 0, false},
		{1, Z1, true},
		{153, Z1, true},
		{154, Z2, true},
		{173, Z2, true},
		{173.5, Z3, true},
		{188, Z3, true},
		{189, Z4, true},
		{195, Z4, true},
		{196, Z5, true},
		{204, Z5, true},
		{205, 0, false},
	}

	for _, tt := range tests {
		got, ok := HeartRateZone(tt.bpm)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("HeartRateZone(%v) = (%v, %v), want (%v, %v)", tt.bpm, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSpeedZone(t *testing.T) {
	tests := []struct {
		kmh    float64
		want   Zone
		wantOK bool
	}{
		{-0.1, 0, false},
		{0, Z1, true},
		{12.999, Z1, true},
		{13.0, Z2, true},
		{15.99, Z2, true},
		{16, Z3, true},
		{19, Z4, true},
		{20.9, Z4, true},
		{21, Z5, true},
		{29.99, Z5, true},
		{30, 0, false},
		{30.01, 0, false},
	}

	for _, tt := range tests {
		got, ok := SpeedZone(tt.kmh)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("SpeedZone(%v) = (%v, %v), want (%v, %v)", tt.kmh, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSpeedZoneMPS(t *testing.T) {
	// 4 m/s = 14.4 km/h
	z, ok := SpeedZoneMPS(4)
	if !ok || z != Z2 {
		t.Errorf("SpeedZoneMPS(4) = (%v, %v), want Z2", z, ok)
	}
}

func TestLabelsAndOrder(t *testing.T) {
	want := []string{"Z1 - Endurance", "Z2 - Marathon", "Z3 - Seuil", "Z4 - VMA", "Z5 - Max"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("All() returned %d zones", len(all))
	}
	for i, z := range all {
		if z.Label() != want[i] {
			t.Errorf("zone %d label = %q, want %q", i, z.Label(), want[i])
		}
		if z.Index() != i {
			t.Errorf("zone %v index = %d, want %d", z, z.Index(), i)
		}
		if z.Weight() != float64(i+1) {
			t.Errorf("zone %v weight = %v", z, z.Weight())
		}
	}
	if Zone(9).Valid() {
		t.Error("Zone(9) should be invalid")
	}
	if got := Zone(0).Label(); got != "unknown" {
		t.Errorf("Zone(0).Label() = %q, want unknown", got)
	}
}
