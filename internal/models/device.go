package models

import (
	"time"

	"github.com/google/uuid"
)

// Device - устройство диспетчерской, получающее push-уведомления
type Device struct {
	ID          uuid.UUID `json:"id"`
	DeviceToken string    `json:"device_token"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
