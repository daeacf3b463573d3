package handlers

import (
	"errors"
	"net/http"

	"firstcrack/internal/models"
	"firstcrack/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"

	errStartBrew       = "failed to start brew"
	errGetStatus       = "failed to load brew status"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for starting a brew.
type startBrewRequest struct {
	BrewType          string `json:"brew_type" binding:"required"` // espresso | lungo | ristretto
	DoseGrams         int    `json:"dose_g"`
	TargetTempC       int    `json:"target_temp_c"`
	TargetPressureBar int    `json:"target_pressure_bar"`
	DeviceAddress     string `json:"device_address"`
}

// StartBrewRequest is an exported model for Swagger docs of the startBrew payload.
type StartBrewRequest struct {
	// Brew type. Allowed: espresso, lungo, ristretto
	BrewType string `json:"brew_type" example:"espresso"`
	// Dose in grams (10-30)
	DoseGrams int `json:"dose_g" example:"18"`
	// Target temperature in Celsius (85-100)
	TargetTempC int `json:"target_temp_c" example:"93"`
	// Target pressure in bar (5-15)
	TargetPressureBar int `json:"target_pressure_bar" example:"9"`
	// Opaque push transport destination
	DeviceAddress string `json:"device_address" example:"dev-123"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start a brew
// @Description  Validates parameters, schedules the notification timeline and returns the brew id
// @Tags         brews
// @Accept       json
// @Produce      json
// @Param        body  body   StartBrewRequest  true  "Brew parameters"
// @Success      200   {object}  map[string]interface{}  "status, brew_id, stage_count, estimated_duration_seconds"
// @Failure      400   {object}  map[string]interface{}  "error, fields"
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/brews [post]
// @Security     BearerAuth
func (h *Handler) startBrew(c *gin.Context) {
	var req startBrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	res, err := h.services.Brew.Start(ctx, service.BrewParams{
		BrewType:          req.BrewType,
		DoseGrams:         req.DoseGrams,
		TargetTempC:       req.TargetTempC,
		TargetPressureBar: req.TargetPressureBar,
		DeviceAddress:     req.DeviceAddress,
	})
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errStartBrew, "brew_start_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                     statusStarted,
		"brew_id":                    res.BrewID,
		"stage_count":                res.StageCount,
		"estimated_duration_seconds": res.EstimatedDurationSeconds,
	})
}

// @Summary      Stop a brew
// @Description  Cancels every not-yet-fired stage notification for the brew
// @Tags         brews
// @Produce      json
// @Param        id   path   string  true  "Brew id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/brews/{id}/stop [post]
// @Security     BearerAuth
func (h *Handler) stopBrew(c *gin.Context) {
	brewID := c.Param("id")
	if err := h.services.Brew.Stop(c.Request.Context(), brewID); err != nil {
		if errors.Is(err, service.ErrBrewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to stop brew", "brew_stop_failed", err, "brew_id", brewID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStopped, "brew_id": brewID})
}

// @Summary      Get brew status
// @Tags         brews
// @Produce      json
// @Param        id   path   string  true  "Brew id"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/brews/{id} [get]
// @Security     BearerAuth
func (h *Handler) getBrew(c *gin.Context) {
	brewID := c.Param("id")
	st, err := h.services.Monitoring.Status(c.Request.Context(), brewID)
	if err != nil {
		if errors.Is(err, service.ErrBrewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "brew_status_failed", err, "brew_id", brewID)
		return
	}
	c.JSON(http.StatusOK, st)
}
