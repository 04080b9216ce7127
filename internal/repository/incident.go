package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/service"
)

const incidentColumns = `
	id::text,
	COALESCE(external_id, ''),
	incident_id,
	issue_type,
	phone_number,
	station,
	status,
	officer,
	action_time,
	audio_url,
	reported_at,
	created_at,
	updated_at`

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{db: db}
}

// PrimaryKeyCodec - первичные ключи инцидентов в Postgres это UUID
func (r *IncidentRepository) PrimaryKeyCodec() incidentkey.PrimaryKeyCodec {
	return incidentkey.UUIDCodec{}
}

// Create создает новую запись об инциденте в бд и присваивает бизнес-идентификатор RPF-<год>-<номер>
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (incident_id, issue_type, phone_number, station, status, audio_url)
		VALUES (
			'RPF-' || to_char(NOW(), 'YYYY') || '-' || lpad(nextval('incident_business_seq')::text, 4, '0'),
			$1, $2, $3, $4, $5
		)
		RETURNING id::text, incident_id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		incident.IssueType,
		incident.PhoneNumber,
		incident.Station,
		incident.Status,
		incident.AudioURL,
	).Scan(&incident.ID, &incident.IncidentID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// FindOne возвращает первую (самую старую) запись, подходящую под любое из условий
func (r *IncidentRepository) FindOne(ctx context.Context, clauses []incidentkey.Clause) (*models.Incident, error) {
	where, args, err := buildWhere(clauses, 1)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE ` + where + ` ORDER BY created_at ASC LIMIT 1;`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to find incident: %w", err)
	}
	return incident, nil
}

// List возвращает все инциденты, новые первыми
func (r *IncidentRepository) List(ctx context.Context) ([]*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY created_at DESC;`
	return r.queryIncidents(ctx, query)
}

// ListOpenCreatedBetween возвращает открытые инциденты, созданные в полуинтервале (from, to]
func (r *IncidentRepository) ListOpenCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Incident, error) {
	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE status = $1 AND created_at > $2 AND created_at <= $3
		ORDER BY created_at ASC;`
	return r.queryIncidents(ctx, query, models.StatusOpen, from, to)
}

// UpdateStatus меняет статус первой подходящей записи и пишет переход в журнал в одной транзакции
func (r *IncidentRepository) UpdateStatus(ctx context.Context, clauses []incidentkey.Clause, status models.Status) (*models.Incident, error) {
	where, args, err := buildWhere(clauses, 1)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin status update: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		id       string
		previous models.Status
	)
	lockQuery := `SELECT id::text, status FROM incidents WHERE ` + where + ` ORDER BY created_at ASC LIMIT 1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, args...).Scan(&id, &previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to lock incident: %w", err)
	}

	updateQuery := `UPDATE incidents SET status = $1, updated_at = NOW() WHERE id = $2::uuid RETURNING ` + incidentColumns + `;`
	incident, err := scanIncident(tx.QueryRow(ctx, updateQuery, status, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update incident status: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO incident_transitions (incident_id, from_status, to_status) VALUES ($1::uuid, $2, $3);`,
		id, previous, status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record status transition: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return incident, nil
}

// UpdateStaffAndTime записывает ответственного сотрудника и время реагирования без проверок
func (r *IncidentRepository) UpdateStaffAndTime(ctx context.Context, clauses []incidentkey.Clause, officer, actionTime string) (*models.Incident, error) {
	where, args, err := buildWhere(clauses, 3)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE incidents SET officer = $1, action_time = $2, updated_at = NOW()
		WHERE id = (SELECT id FROM incidents WHERE ` + where + ` ORDER BY created_at ASC LIMIT 1)
		RETURNING ` + incidentColumns + `;`

	incident, err := scanIncident(r.db.QueryRow(ctx, query, append([]any{officer, actionTime}, args...)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to update staff and time: %w", err)
	}
	return incident, nil
}

// ListTransitions возвращает журнал смены статусов инцидента в хронологическом порядке
func (r *IncidentRepository) ListTransitions(ctx context.Context, incidentID string) ([]*models.StatusTransition, error) {
	query := `
		SELECT id, incident_id::text, from_status, to_status, changed_at
		FROM incident_transitions
		WHERE incident_id = $1::uuid
		ORDER BY changed_at ASC, id ASC;
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status transitions: %w", err)
	}
	defer rows.Close()

	transitions := make([]*models.StatusTransition, 0)
	for rows.Next() {
		t := &models.StatusTransition{}
		if err := rows.Scan(&t.ID, &t.IncidentID, &t.FromStatus, &t.ToStatus, &t.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status transition row: %w", err)
		}
		transitions = append(transitions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error transitions iteration: %w", err)
	}
	return transitions, nil
}

func (r *IncidentRepository) queryIncidents(ctx context.Context, query string, args ...any) ([]*models.Incident, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIncident(row scanner) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.ExternalID,
		&incident.IncidentID,
		&incident.IssueType,
		&incident.PhoneNumber,
		&incident.Station,
		&incident.Status,
		&incident.Officer,
		&incident.ActionTime,
		&incident.AudioURL,
		&incident.Date,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

// buildWhere превращает OR-условия в SQL. Нумерация параметров начинается с start.
func buildWhere(clauses []incidentkey.Clause, start int) (string, []any, error) {
	if len(clauses) == 0 {
		return "", nil, fmt.Errorf("no identifier clauses to match")
	}
	parts := make([]string, 0, len(clauses))
	args := make([]any, 0, len(clauses))
	for i, c := range clauses {
		n := start + i
		switch {
		case c.Field == incidentkey.FieldPrimaryKey && c.Native:
			id, err := uuid.Parse(c.Value)
			if err != nil {
				return "", nil, fmt.Errorf("native primary key clause with non-uuid value %q: %w", c.Value, err)
			}
			parts = append(parts, fmt.Sprintf("id = $%d", n))
			args = append(args, id)
		case c.Field == incidentkey.FieldPrimaryKey:
			parts = append(parts, fmt.Sprintf("id::text = $%d", n))
			args = append(args, c.Value)
		case c.Field == incidentkey.FieldBusinessID:
			parts = append(parts, fmt.Sprintf("incident_id = $%d", n))
			args = append(args, c.Value)
		case c.Field == incidentkey.FieldID:
			parts = append(parts, fmt.Sprintf("external_id = $%d", n))
			args = append(args, c.Value)
		default:
			return "", nil, fmt.Errorf("unknown identifier field %q", c.Field)
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}
