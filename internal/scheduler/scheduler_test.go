package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"firstcrack/internal/logger"
	"firstcrack/internal/models"
	"firstcrack/internal/transport"
)

type fakeBrewRepo struct {
	mu       sync.Mutex
	statuses map[string]string
}

func newFakeBrewRepo() *fakeBrewRepo {
	return &fakeBrewRepo{statuses: make(map[string]string)}
}

func (f *fakeBrewRepo) Save(ctx context.Context, b models.BrewRecord) error { return nil }
func (f *fakeBrewRepo) Get(ctx context.Context, brewID string) (models.BrewRecord, error) {
	return models.BrewRecord{}, nil
}
func (f *fakeBrewRepo) SetStatus(ctx context.Context, brewID, status string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[brewID] = status
	return nil
}
func (f *fakeBrewRepo) statusOf(brewID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[brewID]
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []models.NotificationEvent
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.NotificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}
func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ, brewID string) ([]models.NotificationEvent, error) {
	return nil, nil
}
func (f *fakeEventRepo) typesSeen() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for _, e := range f.events {
		out[e.Type]++
	}
	return out
}

type sentRecord struct {
	surface transport.Surface
	stage   string
	at      time.Time
}

type recordingSender struct {
	mu    sync.Mutex
	sends []sentRecord
	fail  map[string]bool // stage id -> reject every surface
}

func (r *recordingSender) Send(ctx context.Context, device string, surface transport.Surface, payload []byte) error {
	stage := stageOf(payload)
	r.mu.Lock()
	r.sends = append(r.sends, sentRecord{surface: surface, stage: stage, at: time.Now()})
	fail := r.fail[stage]
	r.mu.Unlock()
	if fail {
		return transport.ErrSendRejected
	}
	return nil
}

// stageOf pulls the stage id out of the JSON payload without a full decode.
func stageOf(payload []byte) string {
	const key = `"stage":"`
	s := string(payload)
	i := indexOf(s, key)
	if i < 0 {
		return ""
	}
	rest := s[i+len(key):]
	for j := 0; j < len(rest); j++ {
		if rest[j] == '"' {
			return rest[:j]
		}
	}
	return ""
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func (r *recordingSender) stagesSent() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int)
	for _, s := range r.sends {
		out[s.stage]++
	}
	return out
}

func testBrew(id string) models.BrewContext {
	return models.BrewContext{
		BrewID:            id,
		DeviceAddress:     "dev-123",
		BrewType:          "espresso",
		DoseGrams:         18,
		TargetTempC:       93,
		TargetPressureBar: 9,
		StartTime:         time.Now().UTC(),
	}
}

func newTestScheduler(brews *fakeBrewRepo, events *fakeEventRepo, sender *recordingSender, unit time.Duration) *Scheduler {
	s := NewScheduler(brews, events, sender, logger.Get(logger.ErrorLevel))
	s.OffsetUnit = unit
	return s
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestScheduleFiresEveryStageOnce(t *testing.T) {
	brews := newFakeBrewRepo()
	events := &fakeEventRepo{}
	sender := &recordingSender{}
	s := newTestScheduler(brews, events, sender, time.Millisecond)

	brew := testBrew("brew_1_1")
	s.Schedule(context.Background(), brew)

	if !waitFor(t, 3*time.Second, func() bool { return !s.Active(brew.BrewID) }) {
		t.Fatalf("timeline never finished")
	}

	stages := sender.stagesSent()
	want := []string{"heating", "grinding", "pre_infusion", "brewing", "complete"}
	if len(stages) != len(want) {
		t.Fatalf("expected %d stages sent, got %v", len(want), stages)
	}
	for _, st := range want {
		// one send attempt per stage per surface
		if stages[st] != 3 {
			t.Fatalf("stage %q: expected 3 surface sends, got %d", st, stages[st])
		}
	}

	if !waitFor(t, time.Second, func() bool { return brews.statusOf(brew.BrewID) == models.BrewStatusCompleted }) {
		t.Fatalf("brew not marked completed, status=%q", brews.statusOf(brew.BrewID))
	}
	seen := events.typesSeen()
	if seen[models.EventStageSent] != 5 {
		t.Fatalf("expected 5 STAGE_SENT events, got %d", seen[models.EventStageSent])
	}
	if seen[models.EventBrewCompleted] != 1 {
		t.Fatalf("expected 1 BREW_COMPLETED event, got %d", seen[models.EventBrewCompleted])
	}
}

func TestScheduleFireOrderFollowsOffsets(t *testing.T) {
	brews := newFakeBrewRepo()
	events := &fakeEventRepo{}
	sender := &recordingSender{}
	s := newTestScheduler(brews, events, sender, 2*time.Millisecond)

	brew := testBrew("brew_1_2")
	s.Schedule(context.Background(), brew)
	if !waitFor(t, 3*time.Second, func() bool { return !s.Active(brew.BrewID) }) {
		t.Fatalf("timeline never finished")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	firstSeen := map[string]time.Time{}
	for _, rec := range sender.sends {
		if _, ok := firstSeen[rec.stage]; !ok {
			firstSeen[rec.stage] = rec.at
		}
	}
	order := []string{"heating", "grinding", "pre_infusion", "brewing", "complete"}
	for i := 1; i < len(order); i++ {
		if firstSeen[order[i]].Before(firstSeen[order[i-1]]) {
			t.Fatalf("stage %q fired before %q", order[i], order[i-1])
		}
	}
}

func TestCancelSuppressesRemainingStages(t *testing.T) {
	brews := newFakeBrewRepo()
	events := &fakeEventRepo{}
	sender := &recordingSender{}
	// 20ms per offset unit: heating at 0ms, grinding at 300ms
	s := newTestScheduler(brews, events, sender, 20*time.Millisecond)

	brew := testBrew("brew_2_1")
	s.Schedule(context.Background(), brew)

	// wait for the first stage to fire, then cancel well before the second
	if !waitFor(t, time.Second, func() bool { return len(sender.stagesSent()) >= 1 }) {
		t.Fatalf("first stage never fired")
	}
	if !s.Cancel(brew.BrewID) {
		t.Fatalf("Cancel should report a live timeline")
	}
	if !waitFor(t, time.Second, func() bool { return !s.Active(brew.BrewID) }) {
		t.Fatalf("timeline did not wind down after cancel")
	}

	stages := sender.stagesSent()
	for st := range stages {
		if st != "heating" {
			t.Fatalf("stage %q fired after cancellation", st)
		}
	}
	if brews.statusOf(brew.BrewID) != models.BrewStatusCancelled {
		t.Fatalf("brew not marked cancelled, status=%q", brews.statusOf(brew.BrewID))
	}
	if events.typesSeen()[models.EventBrewCancelled] != 1 {
		t.Fatalf("expected a BREW_CANCELLED event")
	}
}

func TestCancelUnknownBrew(t *testing.T) {
	s := newTestScheduler(newFakeBrewRepo(), &fakeEventRepo{}, &recordingSender{}, time.Millisecond)
	if s.Cancel("brew_404_1") {
		t.Fatalf("Cancel on unknown brew must report false")
	}
}

// A transport failure on one stage must not prevent later stages from firing.
func TestSendFailureDoesNotAbortTimeline(t *testing.T) {
	brews := newFakeBrewRepo()
	events := &fakeEventRepo{}
	sender := &recordingSender{fail: map[string]bool{"grinding": true}}
	s := newTestScheduler(brews, events, sender, time.Millisecond)

	brew := testBrew("brew_3_1")
	s.Schedule(context.Background(), brew)
	if !waitFor(t, 3*time.Second, func() bool { return !s.Active(brew.BrewID) }) {
		t.Fatalf("timeline never finished")
	}

	stages := sender.stagesSent()
	if len(stages) != 5 {
		t.Fatalf("expected all 5 stages attempted, got %v", stages)
	}
	seen := events.typesSeen()
	if seen[models.EventStageSendFailed] != 1 {
		t.Fatalf("expected 1 STAGE_SEND_FAILED event, got %d", seen[models.EventStageSendFailed])
	}
	if seen[models.EventStageSent] != 4 {
		t.Fatalf("expected 4 STAGE_SENT events, got %d", seen[models.EventStageSent])
	}
	if brews.statusOf(brew.BrewID) != models.BrewStatusCompleted {
		t.Fatalf("timeline should complete despite the failure")
	}
}

// No dedup at this layer: the same brew id may run two independent timelines.
func TestScheduleSameBrewTwice(t *testing.T) {
	brews := newFakeBrewRepo()
	events := &fakeEventRepo{}
	sender := &recordingSender{}
	s := newTestScheduler(brews, events, sender, time.Millisecond)

	brew := testBrew("brew_4_1")
	s.Schedule(context.Background(), brew)
	s.Schedule(context.Background(), brew)

	if !waitFor(t, 3*time.Second, func() bool { return !s.Active(brew.BrewID) }) {
		t.Fatalf("timelines never finished")
	}
	stages := sender.stagesSent()
	for st, n := range stages {
		if n != 6 { // two timelines x three surfaces
			t.Fatalf("stage %q: expected 6 sends across both timelines, got %d", st, n)
		}
	}
}
