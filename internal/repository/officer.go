package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/service"
)

const officerColumns = `id, officer_id, name, phone_number, role, station, is_active, created_at, updated_at`

type OfficerRepository struct {
	db *pgxpool.Pool
}

func NewOfficerRepository(db *pgxpool.Pool) service.OfficerRepository {
	return &OfficerRepository{db: db}
}

func (r *OfficerRepository) Create(ctx context.Context, officer *models.Officer) error {
	query := `
		INSERT INTO officers (officer_id, name, phone_number, role, station, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		officer.OfficerID,
		officer.Name,
		officer.PhoneNumber,
		officer.Role,
		officer.Station,
		officer.IsActive,
	).Scan(&officer.ID, &officer.CreatedAt, &officer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create officer: %w", err)
	}
	return nil
}

func (r *OfficerRepository) List(ctx context.Context) ([]*models.Officer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+officerColumns+` FROM officers ORDER BY created_at DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list officers: %w", err)
	}
	defer rows.Close()

	officers := make([]*models.Officer, 0)
	for rows.Next() {
		officer, err := scanOfficer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan officer row: %w", err)
		}
		officers = append(officers, officer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error officers iteration: %w", err)
	}
	return officers, nil
}

func (r *OfficerRepository) FindByOfficerID(ctx context.Context, officerID string) (*models.Officer, error) {
	officer, err := scanOfficer(r.db.QueryRow(ctx, `SELECT `+officerColumns+` FROM officers WHERE officer_id = $1;`, officerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get officer: %w", err)
	}
	return officer, nil
}

func scanOfficer(row scanner) (*models.Officer, error) {
	o := &models.Officer{}
	err := row.Scan(&o.ID, &o.OfficerID, &o.Name, &o.PhoneNumber, &o.Role, &o.Station, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}
