package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guardian-monitor/internal/config"
	"guardian-monitor/internal/logging"
)

func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		// Engine snapshot and commands
		api.GET("/snapshot", h.GetSnapshot)
		api.GET("/alerts", h.GetAlerts)
		api.POST("/alerts", h.CreateManualAlert)
		api.PUT("/alerts/:id/status", h.UpdateAlertStatus)
		api.POST("/emergency", h.SimulateEmergency)

		// Collaborator state
		api.GET("/patient", h.GetPatient)
		api.PUT("/patient", h.SavePatient)
		api.DELETE("/patient", h.DeletePatient)
		api.GET("/preferences", h.GetPreferences)
		api.PUT("/preferences", h.SavePreferences)

		// Export
		api.GET("/report", h.GetReport)
	}

	r.GET("/ws", h.ServeWS)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
