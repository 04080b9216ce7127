package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/railguard/internal/config"
	"github.com/shenikar/railguard/internal/events"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService service.IncidentService
	deviceService   service.DeviceService
	officerService  service.OfficerService
	updates         events.Subscriber
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config

	// streams отменяется при остановке сервера и закрывает открытые SSE-потоки
	streams     context.Context
	stopStreams context.CancelFunc
}

func NewHandler(
	incidentService service.IncidentService,
	deviceService service.DeviceService,
	officerService service.OfficerService,
	updates events.Subscriber,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	streams, stopStreams := context.WithCancel(context.Background())
	return &Handler{
		streams:         streams,
		stopStreams:     stopStreams,
		incidentService: incidentService,
		deviceService:   deviceService,
		officerService:  officerService,
		updates:         updates,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// CloseStreams завершает все открытые SSE-потоки. Регистрируется через http.Server.RegisterOnShutdown.
func (h *Handler) CloseStreams() {
	h.stopStreams()
}

// @Summary Update incident status
// @Description Resolves the incident by primary key, business id or legacy id and overwrites its status.
// @Description The identifier is taken from the route, then body id, then body incidentId.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Any incident identifier"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} StatusUpdateResponse
// @Failure 400 {object} map[string]string "Missing or invalid status, or no identifier"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} NotFoundResponse
// @Failure 500 {object} map[string]string "Server error"
// @Router /incident/{id}/status [patch]
func (h *Handler) updateStatus(c *gin.Context) {
	log := h.logger.WithField("method", "updateStatus").WithField("id", c.Param("id"))

	var input UpdateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		// тело, которое не разбирается, равносильно пустому
		log.WithError(err).Debug("Request body is not a JSON object")
		input = UpdateStatusRequest{}
	}

	incident, err := h.incidentService.UpdateStatus(c.Request.Context(),
		input.StatusValue(),
		c.Param("id"), input.BodyID(), input.BodyIncidentID(),
	)
	if err != nil {
		h.writeIncidentError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, StatusUpdateResponse{
		Message:  "Status updated",
		Incident: ModelToIncidentResponse(incident),
	})
}

// @Summary Assign duty staff
// @Description Sets the responsible officer and action time. The identifier is body incidentId, else the route id.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Any incident identifier"
// @Param request body StaffAndTimeRequest true "Officer and action time"
// @Success 200 {object} StatusUpdateResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} NotFoundResponse
// @Failure 500 {object} map[string]string "Server error"
// @Router /incident/{id}/staff-and-time [patch]
func (h *Handler) updateStaffAndTime(c *gin.Context) {
	log := h.logger.WithField("method", "updateStaffAndTime").WithField("id", c.Param("id"))

	var input StaffAndTimeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	incident, err := h.incidentService.UpdateStaffAndTime(c.Request.Context(),
		input.DutyStaff, input.ActionTime,
		input.IncidentID, c.Param("id"),
	)
	if err != nil {
		h.writeIncidentError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, StatusUpdateResponse{
		Message:  "Staff and time updated",
		Incident: ModelToIncidentResponse(incident),
	})
}

// @Summary Get incident by any identifier
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Any incident identifier"
// @Success 200 {object} map[string]IncidentResponse
// @Failure 404 {object} NotFoundResponse
// @Failure 500 {object} map[string]string "Server error"
// @Router /incident/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	log := h.logger.WithField("method", "getIncident").WithField("id", c.Param("id"))

	incident, err := h.incidentService.GetIncident(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeIncidentError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"incident": ModelToIncidentResponse(incident)})
}

// @Summary Get incident status timeline
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Any incident identifier"
// @Success 200 {object} TimelineResponse
// @Failure 404 {object} NotFoundResponse
// @Failure 500 {object} map[string]string "Server error"
// @Router /incident/{id}/timeline [get]
func (h *Handler) getTimeline(c *gin.Context) {
	log := h.logger.WithField("method", "getTimeline").WithField("id", c.Param("id"))

	transitions, err := h.incidentService.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeIncidentError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, TimelineResponse{Incident: c.Param("id"), Transitions: transitions})
}

// @Summary List incidents
// @Description Returns every incident, newest first.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} IncidentListResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /incident-list [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	incidents, err := h.incidentService.ListIncidents(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch incidents", "success": false})
		return
	}

	c.JSON(http.StatusOK, IncidentListResponse{
		Message:   "Incidents fetched successfully",
		Success:   true,
		Incidents: ModelsToIncidentResponses(incidents),
	})
}

// @Summary Report an incident (SOS)
// @Description Creates an incident and notifies the control room. An optional audio part is uploaded to storage.
// @Tags SOS
// @Accept multipart/form-data
// @Produce json
// @Param issue_type formData string true "Issue type"
// @Param phone_number formData string false "Reporter phone"
// @Param station formData string true "Station"
// @Param audio_url formData string false "Already uploaded recording"
// @Param audio formData file false "Voice recording"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any "Validation error"
// @Failure 500 {object} map[string]any "Server error"
// @Router /sos [post]
func (h *Handler) reportSOS(c *gin.Context) {
	log := h.logger.WithField("method", "reportSOS")

	var input SOSRequest
	if err := c.ShouldBind(&input); err != nil {
		log.WithError(err).Warn("Failed to bind form")
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "success": false})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "success": false})
		return
	}

	var audio *models.AudioUpload
	if file, err := c.FormFile("audio"); err == nil {
		body, err := file.Open()
		if err != nil {
			log.WithError(err).Warn("Failed to open audio part")
		} else {
			defer body.Close()
			audio = &models.AudioUpload{
				Filename:    file.Filename,
				ContentType: file.Header.Get("Content-Type"),
				Size:        file.Size,
				Body:        body,
			}
		}
	}

	incident := SOSRequestToModel(input)
	if err := h.incidentService.ReportIncident(c.Request.Context(), incident, audio); err != nil {
		log.WithError(err).Error("Failed to report incident")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to report incident", "success": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Incident reported successfully",
		"success":  true,
		"incident": ModelToIncidentResponse(incident),
	})
}

// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeIncidentError переводит ошибки сервиса в ответы API
func (h *Handler) writeIncidentError(c *gin.Context, log *logrus.Entry, err error) {
	var notFound *service.NotFoundError
	switch {
	case errors.Is(err, service.ErrMissingStatus):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing status in request body"})
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status. Allowed: " + models.AllowedStatusList()})
	case errors.Is(err, service.ErrMissingIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"message": "No id provided in route or body"})
	case errors.As(err, &notFound):
		log.WithField("tried", notFound.Tried).Info("Incident not found")
		c.JSON(http.StatusNotFound, NotFoundResponse{
			Message: "Incident not found for given id",
			Tried:   notFound.Tried,
		})
	default:
		log.WithError(err).Error("Incident operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
	}
}
