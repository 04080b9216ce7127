package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршруты диспетчерской, под API-ключом если ключи заданы
	operator := api.Group("")
	if len(h.cfg.APIKeys) > 0 {
		operator.Use(APIKeyAuthMiddleware(h.cfg, h.logger))
	}
	incident := operator.Group("/incident")
	{
		incident.GET("/:id", h.getIncident)
		incident.GET("/:id/timeline", h.getTimeline)
		incident.PATCH("/:id/status", h.updateStatus)
		incident.PATCH("/:id/staff-and-time", h.updateStaffAndTime)
	}
	operator.GET("/incident-list", h.listIncidents)
	operator.GET("/incident-events", h.streamIncidentEvents)
	operator.POST("/officers", h.createOfficer)
	operator.GET("/officers", h.listOfficers)

	// Маршруты пассажирского приложения
	api.POST("/sos", h.reportSOS)
	device := api.Group("/device", CORSMiddleware(h.cfg))
	{
		device.POST("", h.registerDevice)
		device.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
	api.POST("/login", h.login)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
