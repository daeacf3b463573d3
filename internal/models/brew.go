package models

import "time"

// Brew lifecycle statuses persisted in the brews table.
const (
	BrewStatusActive    = "ACTIVE"
	BrewStatusCompleted = "COMPLETED"
	BrewStatusCancelled = "CANCELLED"
)

// BrewContext is the per-brew correlation record threaded through scheduling
// and payload construction. All fields are fixed at brew start.
type BrewContext struct {
	BrewID            string    `json:"brew_id"`
	DeviceAddress     string    `json:"device_address"`
	BrewType          string    `json:"brew_type"` // espresso | lungo | ristretto
	DoseGrams         int       `json:"dose_g"`
	TargetTempC       int       `json:"target_temp_c"`
	TargetPressureBar int       `json:"target_pressure_bar"`
	StartTime         time.Time `json:"start_time"`
}

// BrewRecord is the persisted view of a brew: its context plus lifecycle status.
type BrewRecord struct {
	BrewContext
	Status    string    `json:"status"` // ACTIVE | COMPLETED | CANCELLED
	UpdatedAt time.Time `json:"updated_at"`
}

// BrewStatus is the monitoring snapshot derived from a brew record and the
// static stage timeline.
type BrewStatus struct {
	BrewID           string `json:"brew_id"`
	BrewType         string `json:"brew_type"`
	Status           string `json:"status"`
	CurrentStage     string `json:"current_stage,omitempty"`
	ProgressPercent  int    `json:"progress_percent"`
	ElapsedSeconds   int    `json:"elapsed_seconds"`
	StageCount       int    `json:"stage_count"`
	DurationSeconds  int    `json:"duration_seconds"`
	RemainingSeconds int    `json:"remaining_seconds"`
}
