package handlers

import (
	"firstcrack/internal/logger"
	"firstcrack/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Brew progress stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerBrewRoutes(api)
		h.registerInteractionRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerBrewRoutes(api *gin.RouterGroup) {
	brews := api.Group("/brews")
	{
		// Body example: {"brew_type":"espresso","dose_g":18,"target_temp_c":93,"target_pressure_bar":9,"device_address":"dev-123"}
		brews.POST("", h.startBrew)
		brews.POST("/:id/stop", h.stopBrew)
		brews.GET("/:id", h.getBrew)
	}
}

func (h *Handler) registerInteractionRoutes(api *gin.RouterGroup) {
	api.POST("/interactions", h.handleInteraction)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
