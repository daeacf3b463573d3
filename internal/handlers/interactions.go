package handlers

import (
	"errors"
	"net/http"

	"firstcrack/internal/actions"
	"firstcrack/internal/models"
	"firstcrack/internal/router"

	"github.com/gin-gonic/gin"
)

const (
	statusRouted   = "routed"
	statusRejected = "rejected"
)

// Request DTO for a raw notification interaction captured by a platform
// surface.
type interactionRequest struct {
	WireActionID string `json:"action_id" binding:"required"`
	BrewID       string `json:"brew_id,omitempty"`
	DeepLink     string `json:"deep_link,omitempty"`
	Stage        string `json:"stage,omitempty"`
}

// InteractionRequest is an exported model for Swagger docs of the interaction payload.
type InteractionRequest struct {
	// Wire action identifier, e.g. stop_shot, or a platform default-tap sentinel
	WireActionID string `json:"action_id" example:"stop_shot"`
	// Brew correlation id
	BrewID string `json:"brew_id" example:"brew_1_2"`
	// Optional deep link pre-computed by the delivering surface
	DeepLink string `json:"deep_link,omitempty"`
	// Optional stage the notification belonged to
	Stage string `json:"stage,omitempty" example:"brewing"`
}

// @Summary      Route a notification interaction
// @Description  Decodes a raw tap into a canonical navigation event. Rejections are silent by design: 202 with status=rejected, no user-facing error.
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Param        body  body   InteractionRequest  true  "Raw interaction"
// @Success      200   {object}  map[string]interface{}  "status, navigation"
// @Success      202   {object}  map[string]string       "status=rejected"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/interactions [post]
// @Security     BearerAuth
func (h *Handler) handleInteraction(c *gin.Context) {
	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	nav, err := h.services.Interactions.HandleInteraction(c.Request.Context(), models.InteractionEvent{
		WireActionID: req.WireActionID,
		BrewID:       req.BrewID,
		DeepLink:     req.DeepLink,
		Stage:        req.Stage,
	})
	if err != nil {
		// Malformed interactions are logged and dropped, never surfaced as
		// user errors: the notification UI is long gone by the time this runs.
		if errors.Is(err, router.ErrMissingBrewID) || errors.Is(err, actions.ErrUnknownAction) {
			c.JSON(http.StatusAccepted, gin.H{"status": statusRejected})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to route interaction", "interaction_route_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusRouted, "navigation": nav})
}
