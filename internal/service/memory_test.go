package service

import (
	"context"
	"sync"
	"time"

	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
)

// memoryIncidentRepository хранит записи в порядке создания, как ORDER BY created_at
type memoryIncidentRepository struct {
	mu          sync.Mutex
	incidents   []*models.Incident
	transitions []*models.StatusTransition
}

func newMemoryIncidentRepository(incidents ...*models.Incident) *memoryIncidentRepository {
	return &memoryIncidentRepository{incidents: incidents}
}

func (r *memoryIncidentRepository) PrimaryKeyCodec() incidentkey.PrimaryKeyCodec {
	return incidentkey.UUIDCodec{}
}

func (r *memoryIncidentRepository) Create(_ context.Context, incident *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident.CreatedAt = time.Now()
	r.incidents = append(r.incidents, incident)
	return nil
}

func (r *memoryIncidentRepository) FindOne(_ context.Context, clauses []incidentkey.Clause) (*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inc := r.first(clauses); inc != nil {
		cp := *inc
		return &cp, nil
	}
	return nil, ErrIncidentNotFound
}

func (r *memoryIncidentRepository) List(_ context.Context) ([]*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Incident, 0, len(r.incidents))
	for i := len(r.incidents) - 1; i >= 0; i-- {
		out = append(out, r.incidents[i])
	}
	return out, nil
}

func (r *memoryIncidentRepository) UpdateStatus(_ context.Context, clauses []incidentkey.Clause, status models.Status) (*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc := r.first(clauses)
	if inc == nil {
		return nil, ErrIncidentNotFound
	}
	r.transitions = append(r.transitions, &models.StatusTransition{
		ID:         int64(len(r.transitions) + 1),
		IncidentID: inc.ID,
		FromStatus: inc.Status,
		ToStatus:   status,
		ChangedAt:  time.Now(),
	})
	inc.Status = status
	cp := *inc
	return &cp, nil
}

func (r *memoryIncidentRepository) UpdateStaffAndTime(_ context.Context, clauses []incidentkey.Clause, officer, actionTime string) (*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc := r.first(clauses)
	if inc == nil {
		return nil, ErrIncidentNotFound
	}
	inc.Officer = officer
	inc.ActionTime = actionTime
	cp := *inc
	return &cp, nil
}

func (r *memoryIncidentRepository) ListTransitions(_ context.Context, incidentID string) ([]*models.StatusTransition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.StatusTransition, 0)
	for _, t := range r.transitions {
		if t.IncidentID == incidentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryIncidentRepository) ListOpenCreatedBetween(_ context.Context, from, to time.Time) ([]*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Incident, 0)
	for _, inc := range r.incidents {
		if inc.Status == models.StatusOpen && inc.CreatedAt.After(from) && !inc.CreatedAt.After(to) {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (r *memoryIncidentRepository) get(id string) *models.Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inc := range r.incidents {
		if inc.ID == id {
			return inc
		}
	}
	return nil
}

func (r *memoryIncidentRepository) first(clauses []incidentkey.Clause) *models.Incident {
	for _, inc := range r.incidents {
		if incidentkey.MatchesAny(clauses, inc) {
			return inc
		}
	}
	return nil
}
