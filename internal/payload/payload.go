// Package payload turns a (BrewContext, StageEntry) pair into one
// notification payload per delivery surface. Build is a pure function: no
// I/O, no clock, no randomness; identical input yields identical output.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"firstcrack/internal/actions"
	"firstcrack/internal/models"
	"firstcrack/internal/timeline"
)

// ErrInvalidStageData flags a malformed (stage, brew) pairing. Generation is
// all-or-nothing per stage: no surface gets a payload when any part is bad.
var ErrInvalidStageData = errors.New("invalid stage data")

// Notification category tags, one per stage. Surfaces use the tag to pick a
// pre-registered action set.
const (
	CategoryPreheat     = "BREW_PREHEAT"
	CategoryGrind       = "BREW_GRIND"
	CategoryPreInfusion = "BREW_PREINFUSION"
	CategoryExtraction  = "BREW_EXTRACTION"
	CategoryComplete    = "BREW_COMPLETE"
	CategoryNone        = "BREW_NONE"
)

var stageCategories = map[timeline.StageID]string{
	timeline.StageHeating:     CategoryPreheat,
	timeline.StageGrinding:    CategoryGrind,
	timeline.StagePreInfusion: CategoryPreInfusion,
	timeline.StageBrewing:     CategoryExtraction,
	timeline.StageComplete:    CategoryComplete,
}

// CategoryForStage maps a stage to its category tag. Unknown stages degrade
// to the no-action tag instead of failing, keeping delivery alive across
// schema drift.
func CategoryForStage(id timeline.StageID) string {
	if c, ok := stageCategories[id]; ok {
		return c
	}
	return CategoryNone
}

// Set holds the per-surface encodings of one logical notification.
type Set struct {
	Android map[string]string `json:"android"`
	IOS     map[string]any    `json:"ios"`
	Web     map[string]any    `json:"web"`
}

// wireAction is the string-encoded form of an action button embedded in the
// shared data block.
type wireAction struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Icon               string `json:"icon,omitempty"`
	RequiresForeground bool   `json:"requiresForeground,omitempty"`
	DeepLink           string `json:"deepLink,omitempty"`
}

// Build produces the payload set for one stage of one brew.
func Build(brew models.BrewContext, stage timeline.StageEntry) (Set, error) {
	if err := checkInputs(brew, stage); err != nil {
		return Set{}, err
	}

	defaultLink, err := actions.DeepLinkFor(actions.ActionDefault, brew.BrewID)
	if err != nil {
		return Set{}, fmt.Errorf("%w: %v", ErrInvalidStageData, err)
	}

	buttons, err := wireActions(stage, brew.BrewID)
	if err != nil {
		return Set{}, err
	}

	data, err := coreData(brew, stage, buttons, defaultLink)
	if err != nil {
		return Set{}, err
	}

	category := CategoryForStage(stage.ID)
	return Set{
		Android: androidPayload(brew, data, category),
		IOS:     iosPayload(brew, stage, data, category),
		Web:     webPayload(brew, stage, data, buttons),
	}, nil
}

func checkInputs(brew models.BrewContext, stage timeline.StageEntry) error {
	switch {
	case stage.ID == "":
		return fmt.Errorf("%w: empty stage id", ErrInvalidStageData)
	case stage.Title == "" || stage.Body == "":
		return fmt.Errorf("%w: stage %q missing title or body", ErrInvalidStageData, stage.ID)
	case stage.OffsetSeconds < 0:
		return fmt.Errorf("%w: stage %q negative offset", ErrInvalidStageData, stage.ID)
	case brew.DeviceAddress == "":
		return fmt.Errorf("%w: empty device address", ErrInvalidStageData)
	case !actions.ValidBrewID(brew.BrewID):
		return fmt.Errorf("%w: bad brew id %q", ErrInvalidStageData, brew.BrewID)
	}
	return nil
}

// wireActions resolves every stage action to its button metadata and deep
// link. Any unknown action fails the whole stage.
func wireActions(stage timeline.StageEntry, brewID string) ([]wireAction, error) {
	if len(stage.Actions) == 0 {
		return nil, nil
	}
	out := make([]wireAction, 0, len(stage.Actions))
	for _, a := range stage.Actions {
		btn, ok := actions.ButtonFor(a)
		if !ok {
			return nil, fmt.Errorf("%w: stage %q references unknown action %q", ErrInvalidStageData, stage.ID, a)
		}
		link, err := actions.DeepLinkFor(a, brewID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStageData, err)
		}
		out = append(out, wireAction{
			ID:                 actions.WireID(a),
			Title:              btn.Title,
			Icon:               btn.Icon,
			RequiresForeground: btn.RequiresForeground,
			DeepLink:           link,
		})
	}
	return out, nil
}

// coreData builds the machine-readable record shared by every surface. The
// transport requires string values, so numerics are stringified via strconv
// (lossless for integer grams/°C/bar).
func coreData(brew models.BrewContext, stage timeline.StageEntry, buttons []wireAction, defaultLink string) (map[string]string, error) {
	data := map[string]string{
		"type":                "brew_stage",
		"stage":               string(stage.ID),
		"brew_id":             brew.BrewID,
		"title":               stage.Title,
		"body":                stage.Body,
		"brew_type":           brew.BrewType,
		"dose_g":              strconv.Itoa(brew.DoseGrams),
		"target_temp_c":       strconv.Itoa(brew.TargetTempC),
		"target_pressure_bar": strconv.Itoa(brew.TargetPressureBar),
		"deep_link":           defaultLink,
		"progress":            strconv.Itoa(progressPercent(stage)),
	}
	if stage.ImageURL != "" {
		data["image_url"] = stage.ImageURL
	}
	if stage.VideoURL != "" {
		data["video_url"] = stage.VideoURL
	}
	if len(buttons) > 0 {
		encoded, err := json.Marshal(buttons)
		if err != nil {
			return nil, fmt.Errorf("%w: encode actions: %v", ErrInvalidStageData, err)
		}
		data["actions"] = string(encoded)
	}
	return data, nil
}

func progressPercent(stage timeline.StageEntry) int {
	total := timeline.TotalDurationSeconds()
	if total <= 0 {
		return 0
	}
	p := stage.OffsetSeconds * 100 / total
	if p > 100 {
		p = 100
	}
	return p
}

// androidPayload is a data-only FCM-style message; the client renders from
// the data block. Collapse key = brew id so a re-send updates in place.
func androidPayload(brew models.BrewContext, data map[string]string, category string) map[string]string {
	out := make(map[string]string, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	out["category"] = category
	out["collapse_key"] = brew.BrewID
	return out
}

// iosPayload is an APNs-style envelope: aps dict plus the shared data block.
func iosPayload(brew models.BrewContext, stage timeline.StageEntry, data map[string]string, category string) map[string]any {
	aps := map[string]any{
		"alert": map[string]any{
			"title": stage.Title,
			"body":  stage.Body,
		},
		"category":  category,
		"sound":     "default",
		"thread-id": brew.BrewID,
	}
	if stage.ImageURL != "" || stage.VideoURL != "" {
		aps["mutable-content"] = 1
	}
	return map[string]any{
		"aps":  aps,
		"data": data,
	}
}

// webPayload matches the browser Notification API options shape. Web renders
// at most MaxWebActions buttons; the cap trims from the tail so the primary
// action always survives.
func webPayload(brew models.BrewContext, stage timeline.StageEntry, data map[string]string, buttons []wireAction) map[string]any {
	options := map[string]any{
		"body":               stage.Body,
		"tag":                brew.BrewID,
		"renotify":           true,
		"requireInteraction": stage.RequireInteraction,
		"data":               data,
	}
	if stage.ImageURL != "" {
		options["image"] = stage.ImageURL
	}
	if len(buttons) > 0 {
		capped := buttons
		if len(capped) > timeline.MaxWebActions {
			capped = capped[:timeline.MaxWebActions]
		}
		webActions := make([]map[string]string, 0, len(capped))
		for _, b := range capped {
			wa := map[string]string{"action": b.ID, "title": b.Title}
			if b.Icon != "" {
				wa["icon"] = b.Icon
			}
			webActions = append(webActions, wa)
		}
		options["actions"] = webActions
	}
	return map[string]any{
		"title":   stage.Title,
		"options": options,
	}
}
