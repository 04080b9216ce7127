package service

import (
	"errors"
	"fmt"

	"github.com/shenikar/railguard/internal/incidentkey"
)

var (
	ErrMissingStatus      = errors.New("missing status")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrMissingIdentifier  = errors.New("no identifier provided")
	ErrIncidentNotFound   = errors.New("incident not found")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials or inactive account")
	ErrMissingDeviceToken = errors.New("device token is required")
)

// NotFoundError - ни одно из условий поиска не подошло. Tried перечисляет их для ответа клиенту.
type NotFoundError struct {
	Candidate string
	Tried     []incidentkey.Clause
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("incident %q not found", e.Candidate)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrIncidentNotFound
}
