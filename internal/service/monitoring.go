package service

import (
	"context"
	"fmt"
	"time"

	"firstcrack/internal/models"
	"firstcrack/internal/repository"
	"firstcrack/internal/timeline"
)

type MonitoringService struct {
	brews repository.BrewRepo
}

func NewMonitoringService(brews repository.BrewRepo) *MonitoringService {
	return &MonitoringService{brews: brews}
}

// Status returns the progress snapshot for one brew: the persisted record
// plus the current stage and progress derived from wall time against the
// static timeline.
func (s *MonitoringService) Status(ctx context.Context, brewID string) (models.BrewStatus, error) {
	rec, err := s.brews.Get(ctx, brewID)
	if err != nil {
		return models.BrewStatus{}, err
	}
	if rec.BrewID == "" {
		return models.BrewStatus{}, fmt.Errorf("%w: %s", ErrBrewNotFound, brewID)
	}
	return snapshot(rec, time.Now().UTC()), nil
}

// snapshot derives the timeline position at a given instant. Split out so
// tests can pin the clock.
func snapshot(rec models.BrewRecord, now time.Time) models.BrewStatus {
	total := timeline.TotalDurationSeconds()
	elapsed := int(now.Sub(rec.StartTime).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	st := models.BrewStatus{
		BrewID:          rec.BrewID,
		BrewType:        rec.BrewType,
		Status:          rec.Status,
		StageCount:      timeline.Count(),
		DurationSeconds: total,
		ElapsedSeconds:  elapsed,
	}

	switch rec.Status {
	case models.BrewStatusCompleted:
		st.ProgressPercent = 100
		st.CurrentStage = string(timeline.StageComplete)
		st.RemainingSeconds = 0
	case models.BrewStatusCancelled:
		st.ProgressPercent = boundedProgress(elapsed, total)
		st.RemainingSeconds = 0
	default:
		st.ProgressPercent = boundedProgress(elapsed, total)
		st.CurrentStage = string(currentStage(elapsed))
		if remaining := total - elapsed; remaining > 0 {
			st.RemainingSeconds = remaining
		}
	}
	return st
}

func boundedProgress(elapsed, total int) int {
	if total <= 0 {
		return 0
	}
	p := elapsed * 100 / total
	if p > 100 {
		p = 100
	}
	return p
}

// currentStage is the last stage whose offset has passed.
func currentStage(elapsed int) timeline.StageID {
	stages := timeline.Stages()
	current := stages[0].ID
	for _, s := range stages {
		if s.OffsetSeconds <= elapsed {
			current = s.ID
		}
	}
	return current
}
