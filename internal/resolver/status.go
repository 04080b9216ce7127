package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/shenikar/railguard/internal/client"
	"github.com/shenikar/railguard/internal/events"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/normalize"
)

// QuickStatuses - быстрые действия оператора. ASSIGNED выставляется только через API.
var QuickStatuses = []models.Status{
	models.StatusOpen,
	models.StatusInProgress,
	models.StatusResolved,
	models.StatusClosed,
}

var ErrNoTarget = errors.New("resolver: incident has no identifier to update")

// StatusPatcher меняет статус на сервере (обычно *client.Client)
type StatusPatcher interface {
	UpdateStatus(ctx context.Context, id, status string) (*client.Document, error)
}

// StatusUpdater - действия над статусом со страницы инцидента
type StatusUpdater struct {
	patcher StatusPatcher
	bus     *Bus
}

func NewStatusUpdater(patcher StatusPatcher, bus *Bus) *StatusUpdater {
	return &StatusUpdater{patcher: patcher, bus: bus}
}

// Target - идентификатор для PATCH: _id, затем id, затем incidentId
func Target(doc client.Document) string {
	return normalize.CanonicalID(doc.PrimaryKey, doc.SecondaryID(), doc.IncidentID)
}

// Apply отправляет новый статус и после успеха публикует incident:updated
func (u *StatusUpdater) Apply(ctx context.Context, doc client.Document, status string) (*client.Document, error) {
	target := Target(doc)
	if target == "" {
		return nil, ErrNoTarget
	}

	updated, err := u.patcher.UpdateStatus(ctx, target, status)
	if err != nil {
		return nil, fmt.Errorf("update status of %s: %w", target, err)
	}

	if u.bus != nil {
		u.bus.Publish(events.IncidentUpdated{ID: target, Status: models.Status(updated.Status)})
	}
	return updated, nil
}
