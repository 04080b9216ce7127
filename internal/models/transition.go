package models

import "time"

// StatusTransition - запись журнала смены статуса инцидента
type StatusTransition struct {
	ID         int64     `json:"id"`
	IncidentID string    `json:"incident_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ChangedAt  time.Time `json:"changed_at"`
}
