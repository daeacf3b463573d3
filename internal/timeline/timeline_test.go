package timeline

import (
	"testing"
)

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("static stage table invalid: %v", err)
	}
}

func TestTableShape(t *testing.T) {
	if got := Count(); got != 5 {
		t.Fatalf("expected 5 stages, got %d", got)
	}
	if got := TotalDurationSeconds(); got != 75 {
		t.Fatalf("expected total duration 75s, got %d", got)
	}

	want := []StageID{StageHeating, StageGrinding, StagePreInfusion, StageBrewing, StageComplete}
	stages := Stages()
	prev := -1
	for i, s := range stages {
		if s.ID != want[i] {
			t.Fatalf("stage %d: got %q, want %q", i, s.ID, want[i])
		}
		if s.OffsetSeconds <= prev {
			t.Fatalf("stage %q: offset %d not strictly increasing after %d", s.ID, s.OffsetSeconds, prev)
		}
		prev = s.OffsetSeconds
		if len(s.Actions) > MaxActionsPerStage {
			t.Fatalf("stage %q: %d actions exceeds cap", s.ID, len(s.Actions))
		}
	}
	if stages[0].OffsetSeconds != 0 {
		t.Fatalf("first stage should fire at offset 0, got %d", stages[0].OffsetSeconds)
	}
}

func TestStagesReturnsCopy(t *testing.T) {
	a := Stages()
	a[0].Title = "mutated"
	b := Stages()
	if b[0].Title == "mutated" {
		t.Fatalf("Stages must return a copy, not the underlying table")
	}
}

func TestStageByID(t *testing.T) {
	s, ok := StageByID(StageBrewing)
	if !ok {
		t.Fatalf("brewing stage missing")
	}
	if len(s.Actions) != 2 {
		t.Fatalf("brewing should carry 2 actions, got %d", len(s.Actions))
	}
	if !s.RequireInteraction {
		t.Fatalf("brewing should require interaction")
	}
	if _, ok := StageByID("descaling"); ok {
		t.Fatalf("unknown stage should not resolve")
	}
}

func TestPosition(t *testing.T) {
	if Position(StageHeating) != 0 || Position(StageComplete) != 4 {
		t.Fatalf("unexpected lifecycle positions: heating=%d complete=%d", Position(StageHeating), Position(StageComplete))
	}
	if Position("descaling") != -1 {
		t.Fatalf("unknown stage should report position -1")
	}
}
