package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shenikar/railguard/internal/models"
	"github.com/sirupsen/logrus"
)

// DeviceRepository - хранилище push-токенов. Отсутствие записи возвращает (nil, nil).
type DeviceRepository interface {
	FindByToken(ctx context.Context, token string) (*models.Device, error)
	Create(ctx context.Context, device *models.Device) error
	Latest(ctx context.Context) (*models.Device, error)
}

type DeviceService interface {
	// Register сохраняет токен; повторная регистрация того же токена ничего не меняет.
	Register(ctx context.Context, token string) (*models.Device, bool, error)
	LatestDevice(ctx context.Context) (*models.Device, error)
}

type deviceService struct {
	repo   DeviceRepository
	logger *logrus.Logger
}

func NewDeviceService(repo DeviceRepository, logger *logrus.Logger) DeviceService {
	return &deviceService{repo: repo, logger: logger}
}

func (s *deviceService) Register(ctx context.Context, token string) (*models.Device, bool, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "device",
		"method":  "Register",
	})

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false, ErrMissingDeviceToken
	}

	existing, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		log.WithError(err).Error("Failed to look up device token")
		return nil, false, fmt.Errorf("service: could not look up device: %w", err)
	}
	if existing != nil {
		log.Debug("Device token already registered")
		return existing, false, nil
	}

	device := &models.Device{DeviceToken: token}
	if err := s.repo.Create(ctx, device); err != nil {
		log.WithError(err).Error("Failed to save device token")
		return nil, false, fmt.Errorf("service: could not save device: %w", err)
	}

	log.WithField("device_id", device.ID).Info("Device registered")
	return device, true, nil
}

// LatestDevice - последнее зарегистрированное устройство, на него уходят push-уведомления
func (s *deviceService) LatestDevice(ctx context.Context) (*models.Device, error) {
	device, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not get latest device: %w", err)
	}
	return device, nil
}
