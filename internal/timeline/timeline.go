// Package timeline holds the static brew stage table: which notification
// fires when, with what copy, media, and action set. The table is fixed at
// process start and never mutated.
package timeline

import (
	"fmt"

	"firstcrack/internal/actions"
)

// StageID identifies one point in the brew lifecycle, totally ordered by
// position in the stage table.
type StageID string

const (
	StageHeating     StageID = "heating"
	StageGrinding    StageID = "grinding"
	StagePreInfusion StageID = "pre_infusion"
	StageBrewing     StageID = "brewing"
	StageComplete    StageID = "complete"
)

// Action-count caps per surface. Web notification APIs render at most two
// buttons reliably; native surfaces take three.
const (
	MaxActionsPerStage = 3
	MaxWebActions      = 2
)

// StageEntry is one row of the stage table.
type StageEntry struct {
	ID                 StageID
	OffsetSeconds      int // since brew start; strictly increasing down the table
	Title              string
	Body               string
	ImageURL           string
	VideoURL           string
	Actions            []actions.ActionID // display order on the notification
	RequireInteraction bool
}

const mediaBase = "https://cdn.firstcrack.app/media"

var stages = []StageEntry{
	{
		ID:            StageHeating,
		OffsetSeconds: 0,
		Title:         "Warming up",
		Body:          "Boiler heating to target temperature.",
		ImageURL:      mediaBase + "/heating.png",
	},
	{
		ID:            StageGrinding,
		OffsetSeconds: 15,
		Title:         "Grinding",
		Body:          "Dosing and grinding your beans.",
		ImageURL:      mediaBase + "/grinding.png",
	},
	{
		ID:            StagePreInfusion,
		OffsetSeconds: 30,
		Title:         "Pre-infusion",
		Body:          "Low-pressure bloom before extraction.",
		ImageURL:      mediaBase + "/pre_infusion.png",
		Actions:       []actions.ActionID{actions.ActionViewLive},
	},
	{
		ID:                 StageBrewing,
		OffsetSeconds:      40,
		Title:              "Pulling your shot",
		Body:               "Extraction in progress.",
		ImageURL:           mediaBase + "/brewing.png",
		VideoURL:           mediaBase + "/brewing.mp4",
		Actions:            []actions.ActionID{actions.ActionStopShot, actions.ActionViewLive},
		RequireInteraction: true,
	},
	{
		ID:                 StageComplete,
		OffsetSeconds:      75,
		Title:              "Brew complete",
		Body:               "Your espresso is ready. Enjoy!",
		ImageURL:           mediaBase + "/complete.png",
		Actions:            []actions.ActionID{actions.ActionViewRecipe, actions.ActionRateBrew, actions.ActionBrewAgain},
		RequireInteraction: true,
	},
}

// Stages returns a copy of the stage table in firing order.
func Stages() []StageEntry {
	out := make([]StageEntry, len(stages))
	copy(out, stages)
	return out
}

// Count returns the number of stages in the timeline.
func Count() int { return len(stages) }

// TotalDurationSeconds is the offset of the final stage, i.e. the estimated
// duration of a full brew.
func TotalDurationSeconds() int {
	if len(stages) == 0 {
		return 0
	}
	return stages[len(stages)-1].OffsetSeconds
}

// StageByID looks up a stage entry by identifier.
func StageByID(id StageID) (StageEntry, bool) {
	for _, s := range stages {
		if s.ID == id {
			return s, true
		}
	}
	return StageEntry{}, false
}

// Position returns the zero-based lifecycle position of a stage, or -1 for
// an unknown id.
func Position(id StageID) int {
	for i, s := range stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the table invariants: non-empty, strictly increasing
// offsets, first offset >= 0, unique ids, action lists within the cap and
// resolvable in the registry. Called once at startup; a failure is a
// programmer error in the static table.
func Validate() error {
	if len(stages) == 0 {
		return fmt.Errorf("stage table is empty")
	}
	seen := make(map[StageID]struct{}, len(stages))
	prev := -1
	for i, s := range stages {
		if s.ID == "" || s.Title == "" || s.Body == "" {
			return fmt.Errorf("stage %d: missing id/title/body", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("stage %q: duplicate id", s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.OffsetSeconds < 0 || s.OffsetSeconds <= prev {
			return fmt.Errorf("stage %q: offset %d not strictly increasing", s.ID, s.OffsetSeconds)
		}
		prev = s.OffsetSeconds
		if len(s.Actions) > MaxActionsPerStage {
			return fmt.Errorf("stage %q: %d actions exceeds cap %d", s.ID, len(s.Actions), MaxActionsPerStage)
		}
		for _, a := range s.Actions {
			if _, ok := actions.ButtonFor(a); !ok {
				return fmt.Errorf("stage %q: unknown action %q", s.ID, a)
			}
		}
	}
	return nil
}
