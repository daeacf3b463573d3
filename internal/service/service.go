package service

import (
	"context"

	"firstcrack/internal/logger"
	"firstcrack/internal/models"
	"firstcrack/internal/repository"
	"firstcrack/internal/router"
	"firstcrack/internal/scheduler"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Brew exposes the orchestrator's inbound surface: start a brew (which
// schedules its whole notification timeline) and stop it early.
type Brew interface {
	Start(ctx context.Context, p BrewParams) (StartResult, error)
	Stop(ctx context.Context, brewID string) error
}

// Monitoring exposes read-only brew progress derived from the stage timeline.
type Monitoring interface {
	Status(ctx context.Context, brewID string) (models.BrewStatus, error)
}

// EventLog exposes the append-only notification event log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.NotificationEvent, error)
}

// Interactions routes raw notification taps into navigation events.
type Interactions interface {
	HandleInteraction(ctx context.Context, raw models.InteractionEvent) (models.NavigationEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Brew
	Monitoring
	EventLog
	Interactions
	Authorization
}

// NewService wires the repository layer, scheduler and router into concrete
// services.
func NewService(repos *repository.Repository, sched *scheduler.Scheduler, rtr *router.Router, log *logger.Logger) *Service {
	return &Service{
		Brew:          NewBrewService(repos.Brews, repos.Events, sched, log),
		Monitoring:    NewMonitoringService(repos.Brews),
		EventLog:      NewEventLogService(repos.Events),
		Interactions:  NewInteractionService(rtr, repos.Events, log),
		Authorization: NewAuthService(repos.Auth),
	}
}
