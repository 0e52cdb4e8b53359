package handlers

import (
	"chillerd/internal/config"
	"chillerd/internal/logger"
	"chillerd/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services, logging and the IP allow-lists.
type Handler struct {
	services *service.Service
	control  *allowList
	camera   *allowList
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, lists config.Allowlists, log *logger.Logger) *Handler {
	return &Handler{
		services: services,
		control:  newAllowList(lists.Control),
		camera:   newAllowList(lists.Camera),
		log:      log,
	}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Live status stream (HTTP upgrade on the same port)
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		chiller := api.Group("/chiller")
		{
			chiller.GET("/status", h.reportStatus)
			chiller.POST("/mode", h.controlIPMiddleware, h.setMode)
			chiller.POST("/enabled", h.controlIPMiddleware, h.setEnabled)
			chiller.POST("/notify", h.cameraIPMiddleware, h.notifyCoolingActive)
		}
	}
}
