package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/railguard/internal/service"
)

// @Summary Officer login
// @Description Checks officerId and phone number. Inactive accounts are rejected.
// @Tags Officers
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]OfficerResponse
// @Failure 400 {object} map[string]string "Missing credentials"
// @Failure 401 {object} map[string]string "Invalid credentials or inactive account"
// @Failure 500 {object} map[string]string "Server error"
// @Router /login [post]
func (h *Handler) login(c *gin.Context) {
	log := h.logger.WithField("method", "login")

	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing credentials"})
		return
	}

	officer, err := h.officerService.Login(c.Request.Context(), input.OfficerID, input.Phone)
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing credentials"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials or inactive account"})
	case err != nil:
		log.WithError(err).Error("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{"user": ModelToOfficerResponse(officer)})
	}
}

// @Summary Create an officer
// @Tags Officers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateOfficerRequest true "Officer"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /officers [post]
func (h *Handler) createOfficer(c *gin.Context) {
	log := h.logger.WithField("method", "createOfficer")

	var input CreateOfficerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	officer := CreateOfficerRequestToModel(input)
	if err := h.officerService.CreateOfficer(c.Request.Context(), officer); err != nil {
		log.WithError(err).Error("Failed to create officer in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Officer created successfully",
		"officer": ModelToOfficerResponse(officer),
	})
}

// @Summary List officers
// @Tags Officers
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} OfficerResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /officers [get]
func (h *Handler) listOfficers(c *gin.Context) {
	officers, err := h.officerService.ListOfficers(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).WithField("method", "listOfficers").Error("Failed to list officers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelsToOfficerResponses(officers))
}
