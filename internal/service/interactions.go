package service

import (
	"context"
	"time"

	"firstcrack/internal/logger"
	"firstcrack/internal/models"
	"firstcrack/internal/repository"
	"firstcrack/internal/router"
)

type InteractionService struct {
	rtr    *router.Router
	events repository.EventRepo
	log    *logger.Logger
}

func NewInteractionService(rtr *router.Router, events repository.EventRepo, log *logger.Logger) *InteractionService {
	return &InteractionService{rtr: rtr, events: events, log: log}
}

// HandleInteraction routes one raw interaction. A routed interaction is
// recorded in the event log best-effort; a rejection returns the router's
// error so the HTTP layer can answer without surfacing a user-facing error.
func (s *InteractionService) HandleInteraction(ctx context.Context, raw models.InteractionEvent) (models.NavigationEvent, error) {
	nav, err := s.rtr.Route(raw)
	if err != nil {
		return models.NavigationEvent{}, err
	}

	if err := s.events.Append(ctx, models.NotificationEvent{
		OccurredAt:  time.Now().UTC(),
		Type:        models.EventNotificationOpened,
		BrewID:      nav.BrewID,
		Stage:       raw.Stage,
		Description: "notification interaction routed: " + string(nav.Action),
		Metadata:    map[string]any{"deep_link": nav.DeepLink},
	}); err != nil {
		s.log.Warnw("interaction_event_append_failed", "brew_id", nav.BrewID, "err", err)
	}

	return nav, nil
}
