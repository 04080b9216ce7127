package models

import (
	"time"

	"github.com/google/uuid"
)

// Officer - учетная запись оператора.
// PhoneNumber используется при входе как пароль.
type Officer struct {
	ID          uuid.UUID `json:"id"`
	OfficerID   string    `json:"officerId"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Role        string    `json:"role"`
	Station     string    `json:"station"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
