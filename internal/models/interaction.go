package models

import "firstcrack/internal/actions"

// InteractionEvent is the raw, stringly-typed record a platform surface
// captures when the user taps a notification or one of its action buttons.
// Decoding into typed values happens in exactly one place (the router).
type InteractionEvent struct {
	WireActionID string `json:"action_id"`
	BrewID       string `json:"brew_id,omitempty"`
	DeepLink     string `json:"deep_link,omitempty"`
	Stage        string `json:"stage,omitempty"`
}

// NavigationEvent is the router's canonical output, consumed by the UI layer.
type NavigationEvent struct {
	Action   actions.ActionID `json:"action"`
	BrewID   string           `json:"brew_id"`
	DeepLink string           `json:"deep_link"`
}
