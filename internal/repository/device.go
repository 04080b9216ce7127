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

type DeviceRepository struct {
	db *pgxpool.Pool
}

func NewDeviceRepository(db *pgxpool.Pool) service.DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) FindByToken(ctx context.Context, token string) (*models.Device, error) {
	query := `SELECT id, device_token, created_at, updated_at FROM devices WHERE device_token = $1;`
	return r.queryOne(ctx, query, token)
}

// Create сохраняет токен. Параллельная регистрация того же токена не создает дубль.
func (r *DeviceRepository) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (device_token) VALUES ($1)
		ON CONFLICT (device_token) DO UPDATE SET device_token = EXCLUDED.device_token
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query, device.DeviceToken).Scan(&device.ID, &device.CreatedAt, &device.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

// Latest возвращает последнее зарегистрированное устройство
func (r *DeviceRepository) Latest(ctx context.Context) (*models.Device, error) {
	query := `SELECT id, device_token, created_at, updated_at FROM devices ORDER BY created_at DESC LIMIT 1;`
	return r.queryOne(ctx, query)
}

func (r *DeviceRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Device, error) {
	device := &models.Device{}
	err := r.db.QueryRow(ctx, query, args...).Scan(&device.ID, &device.DeviceToken, &device.CreatedAt, &device.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return device, nil
}
