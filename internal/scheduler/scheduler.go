// Package scheduler turns a BrewContext plus the static stage timeline into
// a sequence of timed notification sends. One goroutine per brew lives for
// the duration of its timeline (tens of seconds); fire times are absolute
// (startTime + offset), never chained off the previous send, so a slow send
// cannot drift the stages after it.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"firstcrack/internal/logger"
	"firstcrack/internal/models"
	"firstcrack/internal/payload"
	"firstcrack/internal/repository"
	"firstcrack/internal/timeline"
	"firstcrack/internal/transport"
)

// handle is one live timeline's cancellation hook. A brew id may own more
// than one: scheduling is deliberately not deduplicated here, dedup belongs
// to the caller.
type handle struct {
	cancel context.CancelFunc
}

// Scheduler owns the active brew timelines and their cancellation handles.
type Scheduler struct {
	stages []timeline.StageEntry
	brews  repository.BrewRepo
	events repository.EventRepo
	sender transport.Sender
	log    *logger.Logger

	// OffsetUnit scales stage offsets into wall time. One second in
	// production; tests shrink it to milliseconds. Set before Schedule.
	OffsetUnit time.Duration

	mu     sync.Mutex
	active map[string][]*handle
}

func NewScheduler(brews repository.BrewRepo, events repository.EventRepo, sender transport.Sender, log *logger.Logger) *Scheduler {
	return &Scheduler{
		stages:     timeline.Stages(),
		brews:      brews,
		events:     events,
		sender:     sender,
		log:        log,
		OffsetUnit: time.Second,
		active:     make(map[string][]*handle),
	}
}

// Schedule starts a timeline goroutine for one brew. The context bounds the
// whole timeline; callers pass one that outlives the initiating request.
func (s *Scheduler) Schedule(ctx context.Context, brew models.BrewContext) {
	runCtx, cancel := context.WithCancel(ctx)
	h := &handle{cancel: cancel}

	s.mu.Lock()
	s.active[brew.BrewID] = append(s.active[brew.BrewID], h)
	s.mu.Unlock()

	go s.run(runCtx, brew, h)
}

// Cancel stops all not-yet-fired stages for a brew, across every live
// timeline carrying its id. Suppression of a send already in flight is
// best-effort via context cancellation. Returns false when the brew has no
// live timeline.
func (s *Scheduler) Cancel(brewID string) bool {
	s.mu.Lock()
	hs := s.active[brewID]
	delete(s.active, brewID)
	s.mu.Unlock()

	for _, h := range hs {
		h.cancel()
	}
	return len(hs) > 0
}

// Active reports whether a brew still has a live timeline.
func (s *Scheduler) Active(brewID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active[brewID]) > 0
}

// release drops one finished timeline's handle and frees its context.
func (s *Scheduler) release(brewID string, h *handle) {
	s.mu.Lock()
	hs := s.active[brewID]
	for i, cur := range hs {
		if cur == h {
			hs = append(hs[:i], hs[i+1:]...)
			break
		}
	}
	if len(hs) == 0 {
		delete(s.active, brewID)
	} else {
		s.active[brewID] = hs
	}
	s.mu.Unlock()
	h.cancel()
}

// run walks the stage table in order, firing each stage at its absolute
// time. Stage sends run in their own goroutines so a slow response from
// stage k never delays stage k+1's timer.
func (s *Scheduler) run(ctx context.Context, brew models.BrewContext, h *handle) {
	defer s.release(brew.BrewID, h)

	var sends sync.WaitGroup
	cancelled := false

	for _, stage := range s.stages {
		fireAt := brew.StartTime.Add(time.Duration(stage.OffsetSeconds) * s.OffsetUnit)
		t := time.NewTimer(time.Until(fireAt))
		select {
		case <-ctx.Done():
			t.Stop()
			cancelled = true
		case <-t.C:
		}
		if cancelled {
			break
		}
		sends.Add(1)
		go func(st timeline.StageEntry) {
			defer sends.Done()
			s.sendStage(ctx, brew, st)
		}(stage)
	}

	sends.Wait()
	s.finish(brew, cancelled)
}

// sendStage builds the payload set for one stage and pushes every surface
// variant. Failures are logged and recorded, never retried; the rest of the
// timeline is unaffected.
func (s *Scheduler) sendStage(ctx context.Context, brew models.BrewContext, stage timeline.StageEntry) {
	set, err := payload.Build(brew, stage)
	if err != nil {
		s.log.Errorw("stage_payload_invalid", "brew_id", brew.BrewID, "stage", stage.ID, "err", err)
		s.appendEvent(models.NotificationEvent{
			Type:        models.EventStagePayloadInvalid,
			BrewID:      brew.BrewID,
			Stage:       string(stage.ID),
			Description: "payload generation failed for stage " + string(stage.ID),
			Metadata:    map[string]any{"error": err.Error()},
		})
		return
	}

	var failed []string
	for _, surface := range transport.Surfaces() {
		body, err := encodeSurface(set, surface)
		if err != nil {
			s.log.Errorw("stage_encode_failed", "brew_id", brew.BrewID, "stage", stage.ID, "surface", surface, "err", err)
			failed = append(failed, string(surface))
			continue
		}
		if err := s.sender.Send(ctx, brew.DeviceAddress, surface, body); err != nil {
			s.log.Warnw("stage_send_failed", "brew_id", brew.BrewID, "stage", stage.ID, "surface", surface, "err", err)
			failed = append(failed, string(surface))
		}
	}

	if len(failed) == len(transport.Surfaces()) {
		s.appendEvent(models.NotificationEvent{
			Type:        models.EventStageSendFailed,
			BrewID:      brew.BrewID,
			Stage:       string(stage.ID),
			Description: "all surfaces failed for stage " + string(stage.ID),
			Metadata:    map[string]any{"surfaces": failed},
		})
		return
	}

	meta := map[string]any{"offset_s": stage.OffsetSeconds}
	if len(failed) > 0 {
		meta["failed_surfaces"] = failed
	}
	s.appendEvent(models.NotificationEvent{
		Type:        models.EventStageSent,
		BrewID:      brew.BrewID,
		Stage:       string(stage.ID),
		Description: "stage notification sent: " + string(stage.ID),
		Metadata:    meta,
	})
}

func encodeSurface(set payload.Set, surface transport.Surface) ([]byte, error) {
	switch surface {
	case transport.SurfaceAndroid:
		return json.Marshal(set.Android)
	case transport.SurfaceIOS:
		return json.Marshal(set.IOS)
	case transport.SurfaceWeb:
		return json.Marshal(set.Web)
	default:
		return nil, fmt.Errorf("unknown surface %q", surface)
	}
}

// finish records the terminal status. Repo writes use a fresh context: the
// run context is already cancelled on the cancellation path.
func (s *Scheduler) finish(brew models.BrewContext, cancelled bool) {
	status := models.BrewStatusCompleted
	eventType := models.EventBrewCompleted
	desc := "brew timeline completed"
	if cancelled {
		status = models.BrewStatusCancelled
		eventType = models.EventBrewCancelled
		desc = "brew timeline cancelled"
	}

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()

	if err := s.brews.SetStatus(ctx, brew.BrewID, status, time.Now().UTC()); err != nil {
		s.log.Errorw("brew_status_update_failed", "brew_id", brew.BrewID, "status", status, "err", err)
	}
	s.appendEvent(models.NotificationEvent{
		Type:        eventType,
		BrewID:      brew.BrewID,
		Description: desc,
	})
}

func (s *Scheduler) appendEvent(e models.NotificationEvent) {
	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Errorw("event_append_failed", "type", e.Type, "brew_id", e.BrewID, "err", err)
	}
}
