package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"firstcrack/internal/logger"
	"firstcrack/internal/models"
	"firstcrack/internal/repository"
	"firstcrack/internal/scheduler"
	"firstcrack/internal/timeline"
)

// Documented parameter ranges for brew start.
const (
	MinDoseGrams = 10
	MaxDoseGrams = 30
	MinTempC     = 85
	MaxTempC     = 100
	MinPressure  = 5
	MaxPressure  = 15
)

var ErrBrewNotFound = errors.New("brew not found or already finished")

var brewTypes = map[string]struct{}{
	"espresso":  {},
	"lungo":     {},
	"ristretto": {},
}

// deviceAddressPattern is a format check only; the address is otherwise
// opaque to this subsystem.
var deviceAddressPattern = regexp.MustCompile(`^[A-Za-z0-9:_-]+$`)

// brewSeq disambiguates brews started within the same second.
var brewSeq atomic.Uint64

type BrewService struct {
	brews  repository.BrewRepo
	events repository.EventRepo
	sched  *scheduler.Scheduler
	log    *logger.Logger
}

func NewBrewService(brews repository.BrewRepo, events repository.EventRepo, sched *scheduler.Scheduler, log *logger.Logger) *BrewService {
	return &BrewService{brews: brews, events: events, sched: sched, log: log}
}

// Start validates parameters, persists the brew and schedules its
// notification timeline. Validation errors are the only errors a caller
// ever sees from the timeline's lifetime; everything later is recovered
// locally.
func (s *BrewService) Start(ctx context.Context, p BrewParams) (StartResult, error) {
	if err := validateParams(p); err != nil {
		return StartResult{}, err
	}

	now := time.Now().UTC()
	brew := models.BrewContext{
		BrewID:            newBrewID(now),
		DeviceAddress:     p.DeviceAddress,
		BrewType:          p.BrewType,
		DoseGrams:         p.DoseGrams,
		TargetTempC:       p.TargetTempC,
		TargetPressureBar: p.TargetPressureBar,
		StartTime:         now,
	}

	record := models.BrewRecord{
		BrewContext: brew,
		Status:      models.BrewStatusActive,
		UpdatedAt:   now,
	}
	if err := s.brews.Save(ctx, record); err != nil {
		return StartResult{}, fmt.Errorf("persist brew: %w", err)
	}

	if err := s.events.Append(ctx, models.NotificationEvent{
		OccurredAt:  now,
		Type:        models.EventBrewStarted,
		BrewID:      brew.BrewID,
		Description: "brew started: " + brew.BrewType,
		Metadata: map[string]any{
			"dose_g":              brew.DoseGrams,
			"target_temp_c":       brew.TargetTempC,
			"target_pressure_bar": brew.TargetPressureBar,
		},
	}); err != nil {
		s.log.Errorw("brew_start_event_failed", "brew_id", brew.BrewID, "err", err)
	}

	// The timeline must outlive the initiating request.
	s.sched.Schedule(context.WithoutCancel(ctx), brew)

	return StartResult{
		BrewID:                   brew.BrewID,
		StageCount:               timeline.Count(),
		EstimatedDurationSeconds: timeline.TotalDurationSeconds(),
	}, nil
}

// Stop cancels every not-yet-fired stage of a brew's timeline.
func (s *BrewService) Stop(ctx context.Context, brewID string) error {
	if !s.sched.Cancel(brewID) {
		return fmt.Errorf("%w: %s", ErrBrewNotFound, brewID)
	}
	s.log.Infow("brew_stopped", "brew_id", brewID)
	return nil
}

// newBrewID yields ids of the form brew_<unix-seconds>_<sequence>.
func newBrewID(now time.Time) string {
	return fmt.Sprintf("brew_%d_%d", now.Unix(), brewSeq.Add(1))
}

func validateParams(p BrewParams) error {
	verr := &models.ValidationError{}

	if _, ok := brewTypes[p.BrewType]; !ok {
		verr.Add("brew_type", fmt.Sprintf("unknown brew type %q; must be espresso, lungo or ristretto", p.BrewType))
	}
	if p.DoseGrams < MinDoseGrams || p.DoseGrams > MaxDoseGrams {
		verr.Add("dose_g", fmt.Sprintf("dose %d out of range %d-%d g", p.DoseGrams, MinDoseGrams, MaxDoseGrams))
	}
	if p.TargetTempC < MinTempC || p.TargetTempC > MaxTempC {
		verr.Add("target_temp_c", fmt.Sprintf("temperature %d out of range %d-%d °C", p.TargetTempC, MinTempC, MaxTempC))
	}
	if p.TargetPressureBar < MinPressure || p.TargetPressureBar > MaxPressure {
		verr.Add("target_pressure_bar", fmt.Sprintf("pressure %d out of range %d-%d bar", p.TargetPressureBar, MinPressure, MaxPressure))
	}
	if p.DeviceAddress == "" {
		verr.Add("device_address", "device address is required")
	} else if !deviceAddressPattern.MatchString(p.DeviceAddress) {
		verr.Add("device_address", "device address contains invalid characters")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
