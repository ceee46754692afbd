// ABOUTME: Sleep and User models.
// ABOUTME: Sleep is keyed by the calendar date of the night.
package models

// Sleep is the per-night summary. ID is the calendar date (YYYY-MM-DD).
type Sleep struct {
	ID                string   `json:"sleep_id" yaml:"sleep_id"`
	TotalSleepSeconds *int     `json:"total_sleep_seconds,omitempty" yaml:"total_sleep_seconds,omitempty"`
	DeepSleepSeconds  *int     `json:"deep_sleep_seconds,omitempty" yaml:"deep_sleep_seconds,omitempty"`
	LightSleepSeconds *int     `json:"light_sleep_seconds,omitempty" yaml:"light_sleep_seconds,omitempty"`
	REMSleepSeconds   *int     `json:"rem_sleep_seconds,omitempty" yaml:"rem_sleep_seconds,omitempty"`
	AwakeSleepSeconds *int     `json:"awake_sleep_seconds,omitempty" yaml:"awake_sleep_seconds,omitempty"`
	AvgSleepStress    *float64 `json:"avg_sleep_stress,omitempty" yaml:"avg_sleep_stress,omitempty"`
	OverallScore      *int     `json:"overall_score,omitempty" yaml:"overall_score,omitempty"`
	AvgOvernightHRV   *float64 `json:"avg_overnight_hrv,omitempty" yaml:"avg_overnight_hrv,omitempty"`
	RestingHeartRate  *int     `json:"resting_heart_rate,omitempty" yaml:"resting_heart_rate,omitempty"`
}

// User is the owner profile. Upserts overwrite both display fields.
type User struct {
	ID          string  `json:"user_id" yaml:"user_id"`
	FullName    *string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	DisplayName *string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
}
