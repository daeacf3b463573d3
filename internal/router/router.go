// Package router decodes raw notification interactions into canonical
// navigation events. Each invocation is single-shot and stateless across
// calls; the only shared state is the read-only action registry and the
// process-wide dispatch channel handle.
package router

import (
	"errors"
	"fmt"
	"sync"

	"firstcrack/internal/actions"
	"firstcrack/internal/logger"
	"firstcrack/internal/models"
)

// ErrMissingBrewID rejects an interaction with no brew correlation id: there
// is no valid navigation target, so we fail safe by not navigating.
var ErrMissingBrewID = errors.New("interaction missing brew id")

// Router resolves interactions through the action registry and dispatches
// the resulting navigation events to a single attached channel.
type Router struct {
	log *logger.Logger

	mu sync.Mutex
	ch chan<- models.NavigationEvent
}

func NewRouter(log *logger.Logger) *Router {
	return &Router{log: log}
}

// Attach hands the router the application's single navigation channel. The
// handle is single-owner: attaching replaces any previous channel.
func (r *Router) Attach(ch chan<- models.NavigationEvent) {
	r.mu.Lock()
	r.ch = ch
	r.mu.Unlock()
}

// Detach releases the channel. Interactions arriving while detached still
// resolve; only the dispatch is dropped (logged, recoverable).
func (r *Router) Detach() {
	r.mu.Lock()
	r.ch = nil
	r.mu.Unlock()
}

// Route validates and resolves one raw interaction. On success it emits
// exactly one NavigationEvent to the attached channel and returns it. On
// failure the interaction is rejected: logged, never surfaced to the user.
// The system notification is already dismissed, there is nothing to show an
// error on.
func (r *Router) Route(raw models.InteractionEvent) (models.NavigationEvent, error) {
	if raw.BrewID == "" {
		r.log.Infow("interaction_rejected", "reason", "missing brew id", "action", raw.WireActionID)
		return models.NavigationEvent{}, ErrMissingBrewID
	}

	action, err := actions.Resolve(raw.WireActionID)
	if err != nil {
		r.log.Infow("interaction_rejected", "reason", "unknown action", "action", raw.WireActionID, "brew_id", raw.BrewID)
		return models.NavigationEvent{}, err
	}

	deepLink, err := r.resolveDeepLink(action, raw)
	if err != nil {
		return models.NavigationEvent{}, err
	}

	ev := models.NavigationEvent{
		Action:   action,
		BrewID:   raw.BrewID,
		DeepLink: deepLink,
	}
	r.dispatch(ev)
	return ev, nil
}

// resolveDeepLink picks the navigation target. Tie-break rule: a deep link
// already supplied by the delivering surface wins over the registry's
// computed one, since the surface may carry server-side overrides. The computed
// link fills the gap when the surface supplied none. A brew id that fails
// the allow-list degrades to the generic details link scoped to nothing;
// the interaction is never silently dropped.
func (r *Router) resolveDeepLink(action actions.ActionID, raw models.InteractionEvent) (string, error) {
	if raw.DeepLink != "" {
		return raw.DeepLink, nil
	}
	link, err := actions.DeepLinkFor(action, raw.BrewID)
	if err != nil {
		if errors.Is(err, actions.ErrInvalidBrewID) {
			r.log.Warnw("interaction_brew_id_invalid", "brew_id", raw.BrewID, "action", action)
			return actions.FallbackDeepLink(), nil
		}
		return "", fmt.Errorf("resolve deep link: %w", err)
	}
	return link, nil
}

// dispatch is non-blocking. An unattached or saturated channel is a normal,
// recoverable condition, not a crash: the event is logged and dropped.
func (r *Router) dispatch(ev models.NavigationEvent) {
	r.mu.Lock()
	ch := r.ch
	r.mu.Unlock()

	if ch == nil {
		r.log.Warnw("navigation_dropped_no_channel", "action", ev.Action, "brew_id", ev.BrewID)
		return
	}
	select {
	case ch <- ev:
	default:
		r.log.Warnw("navigation_dropped_channel_full", "action", ev.Action, "brew_id", ev.BrewID)
	}
}
