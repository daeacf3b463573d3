package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"firstcrack/internal/models"
)

func TestEventLogListNormalizesFilter(t *testing.T) {
	events := &fakeEventRepo{}
	at := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	for _, e := range []models.NotificationEvent{
		{OccurredAt: at, Type: models.EventBrewStarted, BrewID: "brew_1_1"},
		{OccurredAt: at.Add(time.Minute), Type: models.EventStageSent, BrewID: "brew_1_1", Stage: "heating"},
		{OccurredAt: at.Add(2 * time.Minute), Type: models.EventStageSent, BrewID: "brew_2_1", Stage: "heating"},
	} {
		if err := events.Append(context.Background(), e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	svc := NewEventLogService(events)

	// the type filter is case-insensitive and whitespace-tolerant
	got, err := svc.List(context.Background(), LogFilter{Type: "  stage_sent "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 STAGE_SENT events, got %d", len(got))
	}

	got, err = svc.List(context.Background(), LogFilter{Type: "stage_sent", BrewID: " brew_2_1 "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].BrewID != "brew_2_1" {
		t.Fatalf("brew filter wrong: %+v", got)
	}
}

func TestEventLogListTimeWindow(t *testing.T) {
	events := &fakeEventRepo{}
	at := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_ = events.Append(context.Background(), models.NotificationEvent{
			OccurredAt: at.Add(time.Duration(i) * time.Hour),
			Type:       models.EventStageSent,
		})
	}
	svc := NewEventLogService(events)

	got, err := svc.List(context.Background(), LogFilter{From: at.Add(30 * time.Minute), To: at.Add(90 * time.Minute)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event in window, got %d", len(got))
	}
}

func TestEventLogListRejectsInvertedRange(t *testing.T) {
	svc := NewEventLogService(&fakeEventRepo{})
	at := time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC)

	_, err := svc.List(context.Background(), LogFilter{From: at.Add(time.Hour), To: at})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("expected errInvalidTimeRange, got %v", err)
	}
}
