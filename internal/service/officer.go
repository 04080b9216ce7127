package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shenikar/railguard/internal/models"
	"github.com/sirupsen/logrus"
)

// OfficerRepository - хранилище сотрудников. Отсутствие записи возвращает (nil, nil).
type OfficerRepository interface {
	Create(ctx context.Context, officer *models.Officer) error
	List(ctx context.Context) ([]*models.Officer, error)
	FindByOfficerID(ctx context.Context, officerID string) (*models.Officer, error)
}

type OfficerService interface {
	CreateOfficer(ctx context.Context, officer *models.Officer) error
	ListOfficers(ctx context.Context) ([]*models.Officer, error)
	Login(ctx context.Context, officerID, phone string) (*models.Officer, error)
}

type officerService struct {
	repo   OfficerRepository
	logger *logrus.Logger
}

func NewOfficerService(repo OfficerRepository, logger *logrus.Logger) OfficerService {
	return &officerService{repo: repo, logger: logger}
}

func (s *officerService) CreateOfficer(ctx context.Context, officer *models.Officer) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "officer",
		"method":     "CreateOfficer",
		"officer_id": officer.OfficerID,
	})

	if err := s.repo.Create(ctx, officer); err != nil {
		log.WithError(err).Error("Failed to create officer in repository")
		return fmt.Errorf("service: could not create officer: %w", err)
	}
	log.Info("Officer created")
	return nil
}

func (s *officerService) ListOfficers(ctx context.Context) ([]*models.Officer, error) {
	officers, err := s.repo.List(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list officers from repository")
		return nil, fmt.Errorf("service: could not list officers: %w", err)
	}
	return officers, nil
}

// Login сверяет служебный номер и телефон. Неактивные учетные записи не пускаются.
func (s *officerService) Login(ctx context.Context, officerID, phone string) (*models.Officer, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "officer",
		"method":     "Login",
		"officer_id": officerID,
	})

	officerID = strings.TrimSpace(officerID)
	phone = strings.TrimSpace(phone)
	if officerID == "" || phone == "" {
		return nil, ErrMissingCredentials
	}

	officer, err := s.repo.FindByOfficerID(ctx, officerID)
	if err != nil {
		log.WithError(err).Error("Failed to look up officer")
		return nil, fmt.Errorf("service: could not look up officer: %w", err)
	}
	if officer == nil || !officer.IsActive || officer.PhoneNumber != phone {
		log.Info("Rejected login attempt")
		return nil, ErrInvalidCredentials
	}

	log.Info("Officer logged in")
	return officer, nil
}
