package v1

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/railguard/internal/events"
)

// @Summary Stream incident updates
// @Description Server-sent events; each event is named incident:updated and carries {id, status}.
// @Tags Incidents
// @Produce text/event-stream
// @Security ApiKeyAuth
// @Success 200 {object} events.IncidentUpdated
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incident-events [get]
func (h *Handler) streamIncidentEvents(c *gin.Context) {
	log := h.logger.WithField("method", "streamIncidentEvents")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(h.streams, cancel)
	defer stop()

	updates, err := h.updates.SubscribeUpdated(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to subscribe to incident updates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	log.Debug("Client subscribed to incident updates")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent(events.UpdatedChannel, event)
			return true
		}
	})
}
