package service

import "time"

// BrewParams are the validated inputs to Brew.Start.
type BrewParams struct {
	BrewType          string // espresso | lungo | ristretto
	DoseGrams         int
	TargetTempC       int
	TargetPressureBar int
	DeviceAddress     string
}

// StartResult is returned synchronously to the caller of Start; everything
// after it happens on the unattended timeline.
type StartResult struct {
	BrewID                   string `json:"brew_id"`
	StageCount               int    `json:"stage_count"`
	EstimatedDurationSeconds int    `json:"estimated_duration_seconds"`
}

// LogFilter supports event-log filtering by time range, type and brew.
type LogFilter struct {
	From   time.Time // inclusive; zero means no lower bound
	To     time.Time // inclusive; zero means no upper bound
	Type   string    // "", or one of the models.Event* constants
	BrewID string    // "" means all brews
}
