package v1

import (
	"strconv"

	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
)

// UpdateStatusRequest DTO для смены статуса.
// Поля не типизированы: нестроковый status должен давать "Missing status", а не ошибку разбора.
// @Description DTO для смены статуса
type UpdateStatusRequest struct {
	Status     any `json:"status" swaggertype:"string" example:"RESOLVED"`
	ID         any `json:"id,omitempty" swaggertype:"string"`
	IncidentID any `json:"incidentId,omitempty" swaggertype:"string"`
}

func (r UpdateStatusRequest) StatusValue() string {
	s, _ := r.Status.(string)
	return s
}

func (r UpdateStatusRequest) BodyID() string {
	return identifierValue(r.ID)
}

func (r UpdateStatusRequest) BodyIncidentID() string {
	return identifierValue(r.IncidentID)
}

// identifierValue допускает строки и числа, остальное считается отсутствующим
func identifierValue(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

// StaffAndTimeRequest DTO для назначения ответственного
// @Description DTO для назначения ответственного и времени реагирования
type StaffAndTimeRequest struct {
	DutyStaff  string `json:"dutyStaff" example:"SI Patil"`
	ActionTime string `json:"action_time" example:"2026-10-19T10:15:00Z"`
	IncidentID string `json:"incidentId,omitempty"`
}

// SOSRequest DTO экстренного обращения (multipart/form-data)
// @Description DTO экстренного обращения
type SOSRequest struct {
	IssueType   string `form:"issue_type" validate:"required,max=255"`
	PhoneNumber string `form:"phone_number" validate:"max=32"`
	Station     string `form:"station" validate:"required,max=255"`
	AudioURL    string `form:"audio_url" validate:"omitempty,url"`
}

// LoginRequest DTO для входа оператора
// @Description DTO для входа оператора
type LoginRequest struct {
	OfficerID string `json:"officerId" example:"RPF-101"`
	Phone     string `json:"phone" example:"9876543210"`
}

// CreateOfficerRequest DTO для создания сотрудника
// @Description DTO для создания сотрудника
type CreateOfficerRequest struct {
	OfficerID   string `json:"officerId" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,min=2,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,max=32"`
	Role        string `json:"role,omitempty"`
	Station     string `json:"station,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// IncidentResponse DTO обращения.
// ID - отображаемый идентификатор (бизнес-номер, затем id, затем первичный ключ).
// @Description DTO обращения
type IncidentResponse struct {
	PrimaryKey  string        `json:"_id"`
	ID          string        `json:"id"`
	ExternalID  string        `json:"externalId,omitempty"`
	IncidentID  string        `json:"incidentId,omitempty"`
	IssueType   string        `json:"issue_type"`
	PhoneNumber string        `json:"phone_number"`
	Station     string        `json:"station"`
	Status      models.Status `json:"status" swaggertype:"string"`
	Officer     string        `json:"officer,omitempty"`
	ActionTime  string        `json:"action_time,omitempty"`
	AudioURL    string        `json:"audio_url,omitempty"`
	Date        string        `json:"date,omitempty"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

// StatusUpdateResponse DTO ответа на смену статуса
// @Description DTO ответа на смену статуса
type StatusUpdateResponse struct {
	Message  string            `json:"message"`
	Incident *IncidentResponse `json:"incident"`
}

// NotFoundResponse DTO ответа, когда ни одно условие поиска не подошло
// @Description DTO ответа "не найдено"
type NotFoundResponse struct {
	Message string               `json:"message"`
	Tried   []incidentkey.Clause `json:"tried"`
}

// IncidentListResponse DTO списка обращений
// @Description DTO списка обращений
type IncidentListResponse struct {
	Message   string              `json:"message"`
	Success   bool                `json:"success"`
	Incidents []*IncidentResponse `json:"incidents"`
}

// TimelineResponse DTO журнала статусов
// @Description DTO журнала статусов
type TimelineResponse struct {
	Incident    string                     `json:"incident"`
	Transitions []*models.StatusTransition `json:"transitions"`
}

// OfficerResponse DTO сотрудника без телефона
// @Description DTO сотрудника
type OfficerResponse struct {
	ID        string `json:"_id"`
	OfficerID string `json:"officerId"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Station   string `json:"station"`
	IsActive  bool   `json:"isActive"`
}
