package v1

import (
	"time"

	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/normalize"
)

// SOSRequestToModel преобразует DTO обращения в доменную модель
func SOSRequestToModel(req SOSRequest) *models.Incident {
	return &models.Incident{
		IssueType:   req.IssueType,
		PhoneNumber: req.PhoneNumber,
		Station:     req.Station,
		AudioURL:    req.AudioURL,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	created := model.CreatedAt
	return &IncidentResponse{
		PrimaryKey:  model.ID,
		ID:          normalize.DisplayID(model.ID, model.ExternalID, model.IncidentID),
		ExternalID:  model.ExternalID,
		IncidentID:  model.IncidentID,
		IssueType:   model.IssueType,
		PhoneNumber: model.PhoneNumber,
		Station:     model.Station,
		Status:      model.Status,
		Officer:     model.Officer,
		ActionTime:  model.ActionTime,
		AudioURL:    model.AudioURL,
		Date:        normalize.FormatDate(normalize.Date(model.Date, &created)),
		CreatedAt:   model.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   model.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func CreateOfficerRequestToModel(req CreateOfficerRequest) *models.Officer {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	role := req.Role
	if role == "" {
		role = "officer"
	}
	return &models.Officer{
		OfficerID:   req.OfficerID,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Role:        role,
		Station:     req.Station,
		IsActive:    active,
	}
}

func ModelToOfficerResponse(model *models.Officer) *OfficerResponse {
	return &OfficerResponse{
		ID:        model.ID.String(),
		OfficerID: model.OfficerID,
		Name:      model.Name,
		Role:      model.Role,
		Station:   model.Station,
		IsActive:  model.IsActive,
	}
}

func ModelsToOfficerResponses(models []*models.Officer) []*OfficerResponse {
	responses := make([]*OfficerResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToOfficerResponse(model)
	}
	return responses
}
