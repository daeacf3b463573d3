package actions

import (
	"errors"
	"fmt"
	"regexp"
)

// Scheme is the deep-link URI scheme owned by the app.
const Scheme = "firstcrack"

// ActionID is the closed set of user-invokable notification actions. The
// string value doubles as the wire identifier sent to and received from every
// platform surface.
type ActionID string

const (
	// ActionDefault is a tap on the notification body rather than a button.
	ActionDefault ActionID = "default"

	ActionStopShot   ActionID = "stop_shot"
	ActionViewLive   ActionID = "view_live"
	ActionViewRecipe ActionID = "view_recipe"
	ActionRateBrew   ActionID = "rate_brew"
	ActionBrewAgain  ActionID = "brew_again"
)

var (
	ErrUnknownAction = errors.New("unknown action identifier")
	ErrInvalidBrewID = errors.New("invalid brew id")
)

// Button carries the display metadata a payload builder needs to render an
// action on a notification, plus the deep-link path segment for the action.
type Button struct {
	ID                 ActionID
	Title              string
	Icon               string
	RequiresForeground bool
	Segment            string
}

var registry = map[ActionID]Button{
	ActionDefault:    {ID: ActionDefault, Title: "Open", Segment: "details", RequiresForeground: true},
	ActionStopShot:   {ID: ActionStopShot, Title: "Stop Shot", Icon: "ic_stop", Segment: "stop"},
	ActionViewLive:   {ID: ActionViewLive, Title: "Watch Live", Icon: "ic_live", Segment: "live", RequiresForeground: true},
	ActionViewRecipe: {ID: ActionViewRecipe, Title: "View Recipe", Icon: "ic_recipe", Segment: "recipe", RequiresForeground: true},
	ActionRateBrew:   {ID: ActionRateBrew, Title: "Rate Brew", Icon: "ic_star", Segment: "rate", RequiresForeground: true},
	ActionBrewAgain:  {ID: ActionBrewAgain, Title: "Brew Again", Icon: "ic_repeat", Segment: "again"},
}

// Platform surfaces report a body tap under their own reserved identifiers.
// All of them resolve to ActionDefault; none collides with a registry wire id.
var defaultSentinels = map[string]struct{}{
	"default": {},
	"tap":     {},
	"com.apple.UNNotificationDefaultActionIdentifier": {},
	"NOTIFICATION_CLICK":                              {},
}

// brewIDPattern allow-lists brew ids before they are interpolated into a
// navigation target.
var brewIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// All returns the registry's action ids in stable display order, the default
// tap first.
func All() []ActionID {
	return []ActionID{
		ActionDefault,
		ActionStopShot,
		ActionViewLive,
		ActionViewRecipe,
		ActionRateBrew,
		ActionBrewAgain,
	}
}

// WireID returns the canonical wire identifier for an action.
func WireID(a ActionID) string { return string(a) }

// Resolve maps a raw wire identifier to its ActionID. Recognized platform
// default-tap sentinels resolve to ActionDefault.
func Resolve(wireID string) (ActionID, error) {
	if _, ok := defaultSentinels[wireID]; ok {
		return ActionDefault, nil
	}
	a := ActionID(wireID)
	if _, ok := registry[a]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, wireID)
}

// ButtonFor returns the display metadata for an action.
func ButtonFor(a ActionID) (Button, bool) {
	b, ok := registry[a]
	return b, ok
}

// ValidBrewID reports whether id is safe to interpolate into a deep link.
func ValidBrewID(id string) bool {
	return id != "" && brewIDPattern.MatchString(id)
}

// DeepLinkFor builds the navigation target for an action scoped to a brew:
// <scheme>://brew/<brewId>/<segment>. The brew id is validated before
// interpolation; callers receiving ErrInvalidBrewID must fall back to
// FallbackDeepLink rather than drop the interaction.
func DeepLinkFor(a ActionID, brewID string) (string, error) {
	b, ok := registry[a]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	if !ValidBrewID(brewID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidBrewID, brewID)
	}
	return fmt.Sprintf("%s://brew/%s/%s", Scheme, brewID, b.Segment), nil
}

// FallbackDeepLink is the generic details link scoped to no brew, used when a
// brew id fails validation.
func FallbackDeepLink() string {
	return Scheme + "://brew/details"
}
