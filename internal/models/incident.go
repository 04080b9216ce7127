package models

import (
	"strings"
	"time"
)

// Status - статус инцидента
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN-PROGRESS"
	StatusAssigned   Status = "ASSIGNED"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// AllowedStatuses - все статусы, которые принимает сервер.
// ASSIGNED доступен только через API, в быстрых действиях оператора его нет.
var AllowedStatuses = []Status{
	StatusOpen,
	StatusInProgress,
	StatusAssigned,
	StatusResolved,
	StatusClosed,
}

// ParseStatus приводит строку к верхнему регистру и проверяет её по списку допустимых статусов.
// Пробелы не обрезаются: "open " не является допустимым значением.
func ParseStatus(raw string) (Status, bool) {
	candidate := Status(strings.ToUpper(raw))
	for _, s := range AllowedStatuses {
		if s == candidate {
			return s, true
		}
	}
	return "", false
}

// AllowedStatusList возвращает допустимые статусы через запятую
func AllowedStatusList() string {
	parts := make([]string, len(AllowedStatuses))
	for i, s := range AllowedStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// Incident - обращение пассажира.
// ID - первичный ключ хранилища в строковом виде (UUID в Postgres, ObjectID в Mongo).
type Incident struct {
	ID          string     `json:"_id"`
	ExternalID  string     `json:"id,omitempty"`
	IncidentID  string     `json:"incidentId,omitempty"`
	IssueType   string     `json:"issue_type"`
	PhoneNumber string     `json:"phone_number"`
	Station     string     `json:"station"`
	Status      Status     `json:"status"`
	Officer     string     `json:"officer,omitempty"`
	ActionTime  string     `json:"action_time,omitempty"`
	AudioURL    string     `json:"audio_url,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Aliases возвращает все непустые идентификаторы записи
func (i *Incident) Aliases() []string {
	aliases := make([]string, 0, 3)
	for _, v := range []string{i.ID, i.IncidentID, i.ExternalID} {
		if v != "" {
			aliases = append(aliases, v)
		}
	}
	return aliases
}
