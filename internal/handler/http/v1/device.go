package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/railguard/internal/service"
)

// @Summary Register a push device
// @Description Stores an FCM device token. Registering the same token twice is a no-op.
// @Tags Devices
// @Accept multipart/form-data
// @Produce json
// @Param device_token formData string true "FCM token"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any "device_token is required"
// @Failure 500 {object} map[string]any "Failed to register device"
// @Router /device [post]
func (h *Handler) registerDevice(c *gin.Context) {
	log := h.logger.WithField("method", "registerDevice")

	_, created, err := h.deviceService.Register(c.Request.Context(), c.PostForm("device_token"))
	if err != nil {
		if errors.Is(err, service.ErrMissingDeviceToken) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "device_token is required", "success": false})
			return
		}
		log.WithError(err).Error("Failed to register device")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register device", "success": false})
		return
	}

	message := "Device already registered"
	if created {
		message = "Device registered successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "success": true})
}
