package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shenikar/railguard/internal/events"
	"github.com/shenikar/railguard/internal/incidentkey"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/notification"
	"github.com/shenikar/railguard/internal/storage"
	"github.com/sirupsen/logrus"
)

// IncidentRepository определяет контракт для работы с хранилищем инцидентов.
// Поиск идет по набору OR-условий, при нескольких совпадениях берется самая старая запись.
type IncidentRepository interface {
	PrimaryKeyCodec() incidentkey.PrimaryKeyCodec
	Create(ctx context.Context, incident *models.Incident) error
	FindOne(ctx context.Context, clauses []incidentkey.Clause) (*models.Incident, error)
	List(ctx context.Context) ([]*models.Incident, error)
	UpdateStatus(ctx context.Context, clauses []incidentkey.Clause, status models.Status) (*models.Incident, error)
	UpdateStaffAndTime(ctx context.Context, clauses []incidentkey.Clause, officer, actionTime string) (*models.Incident, error)
	ListTransitions(ctx context.Context, incidentID string) ([]*models.StatusTransition, error)
	ListOpenCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Incident, error)
}

// IncidentCache - кеш инцидентов по идентификатору. Промах возвращает (nil, nil).
type IncidentCache interface {
	GetIncidentFromCache(ctx context.Context, key string) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, key string, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, incident *models.Incident) error
}

// IncidentService определяет контракт бизнес-логики работы с обращениями
type IncidentService interface {
	ReportIncident(ctx context.Context, incident *models.Incident, audio *models.AudioUpload) error
	GetIncident(ctx context.Context, candidate string) (*models.Incident, error)
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	UpdateStatus(ctx context.Context, status string, identifiers ...string) (*models.Incident, error)
	UpdateStaffAndTime(ctx context.Context, officer, actionTime string, identifiers ...string) (*models.Incident, error)
	Timeline(ctx context.Context, candidate string) ([]*models.StatusTransition, error)
	EscalateOverdue(ctx context.Context, from, to time.Time) (int, error)
}

type incidentService struct {
	repo     IncidentRepository
	cache    IncidentCache
	updates  events.Publisher
	notifier notification.Publisher
	audio    storage.AudioStore
	logger   *logrus.Logger
}

// NewIncidentService создает сервис. audio может быть nil, тогда записи не сохраняются.
func NewIncidentService(
	repo IncidentRepository,
	cache IncidentCache,
	updates events.Publisher,
	notifier notification.Publisher,
	audio storage.AudioStore,
	logger *logrus.Logger,
) IncidentService {
	return &incidentService{
		repo:     repo,
		cache:    cache,
		updates:  updates,
		notifier: notifier,
		audio:    audio,
		logger:   logger,
	}
}

// ReportIncident сохраняет SOS-обращение и ставит уведомления в очередь.
// Ошибка загрузки аудио или постановки в очередь не отменяет обращение.
func (s *incidentService) ReportIncident(ctx context.Context, incident *models.Incident, audio *models.AudioUpload) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ReportIncident",
		"station": incident.Station,
	})
	log.Info("Attempting to report a new incident")

	if audio != nil && s.audio != nil {
		key := storage.ObjectKey(audio.Filename)
		url, err := s.audio.Upload(ctx, key, audio.ContentType, audio.Body, audio.Size)
		if err != nil {
			log.WithError(err).Warn("Failed to upload audio recording, continuing without it")
		} else {
			incident.AudioURL = url
		}
	}

	incident.Status = models.StatusOpen
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}
	log = log.WithField("incident_id", incident.ID)

	if err := s.notifier.Publish(ctx, notification.NewJob(notification.KindSOS, incident)); err != nil {
		log.WithError(err).Error("Failed to enqueue incident notifications")
	}

	log.WithField("business_id", incident.IncidentID).Info("Incident reported successfully")
	return nil
}

// GetIncident ищет инцидент по любому из его идентификаторов, сначала в кеше
func (s *incidentService) GetIncident(ctx context.Context, candidate string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "GetIncident",
		"candidate": candidate,
	})

	key, err := incidentkey.New(candidate)
	if err != nil {
		return nil, ErrMissingIdentifier
	}

	cached, err := s.cache.GetIncidentFromCache(ctx, key.String())
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	clauses := key.Resolve(s.repo.PrimaryKeyCodec())
	incident, err := s.repo.FindOne(ctx, clauses)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Info("Incident not found")
			return nil, &NotFoundError{Candidate: key.String(), Tried: clauses}
		}
		log.WithError(err).Error("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	// кешируем только под точным идентификатором записи, иначе инвалидация его не найдет
	if slices.Contains(incident.Aliases(), key.String()) {
		if err := s.cache.SetIncidentCache(ctx, key.String(), incident); err != nil {
			log.WithError(err).Warn("Failed to cache incident")
		}
	}

	log.Debug("Incident fetched successfully")
	return incident, nil
}

// ListIncidents возвращает все обращения, новые первыми
func (s *incidentService) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})

	incidents, err := s.repo.List(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// UpdateStatus меняет статус инцидента. identifiers перебираются по порядку, берется первый непустой.
// Проверки идут в порядке: наличие статуса, допустимость статуса, наличие идентификатора.
func (s *incidentService) UpdateStatus(ctx context.Context, status string, identifiers ...string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "UpdateStatus",
		"status":  status,
	})

	if status == "" {
		return nil, ErrMissingStatus
	}
	next, ok := models.ParseStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	key, err := incidentkey.FirstOf(identifiers...)
	if err != nil {
		return nil, ErrMissingIdentifier
	}
	log = log.WithField("candidate", key.String())

	clauses := key.Resolve(s.repo.PrimaryKeyCodec())
	incident, err := s.repo.UpdateStatus(ctx, clauses, next)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Info("No incident matched for status update")
			return nil, &NotFoundError{Candidate: key.String(), Tried: clauses}
		}
		log.WithError(err).Error("Failed to update incident status in repository")
		return nil, fmt.Errorf("service: could not update incident status: %w", err)
	}

	s.afterChange(ctx, log, incident)
	log.WithField("incident_id", incident.ID).Info("Incident status updated")
	return incident, nil
}

// UpdateStaffAndTime записывает ответственного и время реагирования
func (s *incidentService) UpdateStaffAndTime(ctx context.Context, officer, actionTime string, identifiers ...string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "UpdateStaffAndTime",
	})

	key, err := incidentkey.FirstOf(identifiers...)
	if err != nil {
		return nil, ErrMissingIdentifier
	}
	log = log.WithField("candidate", key.String())

	clauses := key.Resolve(s.repo.PrimaryKeyCodec())
	incident, err := s.repo.UpdateStaffAndTime(ctx, clauses, officer, actionTime)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			log.Info("No incident matched for staff update")
			return nil, &NotFoundError{Candidate: key.String(), Tried: clauses}
		}
		log.WithError(err).Error("Failed to update staff and time in repository")
		return nil, fmt.Errorf("service: could not update staff and time: %w", err)
	}

	s.afterChange(ctx, log, incident)
	log.WithField("incident_id", incident.ID).Info("Incident staff and time updated")
	return incident, nil
}

// Timeline возвращает журнал смены статусов
func (s *incidentService) Timeline(ctx context.Context, candidate string) ([]*models.StatusTransition, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "Timeline",
		"candidate": candidate,
	})

	key, err := incidentkey.New(candidate)
	if err != nil {
		return nil, ErrMissingIdentifier
	}
	clauses := key.Resolve(s.repo.PrimaryKeyCodec())
	incident, err := s.repo.FindOne(ctx, clauses)
	if err != nil {
		if errors.Is(err, ErrIncidentNotFound) {
			return nil, &NotFoundError{Candidate: key.String(), Tried: clauses}
		}
		log.WithError(err).Error("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	transitions, err := s.repo.ListTransitions(ctx, incident.ID)
	if err != nil {
		log.WithError(err).Error("Failed to list status transitions")
		return nil, fmt.Errorf("service: could not list status transitions: %w", err)
	}
	return transitions, nil
}

// EscalateOverdue ставит уведомление sla_breach для открытых обращений, созданных в (from, to].
// Окна соседних проверок не пересекаются, поэтому каждое обращение эскалируется один раз.
func (s *incidentService) EscalateOverdue(ctx context.Context, from, to time.Time) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "EscalateOverdue",
		"from":    from,
		"to":      to,
	})

	overdue, err := s.repo.ListOpenCreatedBetween(ctx, from, to)
	if err != nil {
		log.WithError(err).Error("Failed to list overdue incidents")
		return 0, fmt.Errorf("service: could not list overdue incidents: %w", err)
	}

	escalated := 0
	for _, incident := range overdue {
		if err := s.notifier.Publish(ctx, notification.NewJob(notification.KindSLABreach, incident)); err != nil {
			log.WithError(err).WithField("incident_id", incident.ID).Error("Failed to enqueue SLA breach notification")
			continue
		}
		escalated++
	}

	if escalated > 0 {
		log.WithField("count", escalated).Warn("Escalated incidents past SLA")
	}
	return escalated, nil
}

// afterChange сбрасывает кеш и оповещает подписчиков. Ошибки только логируются.
func (s *incidentService) afterChange(ctx context.Context, log *logrus.Entry, incident *models.Incident) {
	if err := s.cache.InvalidateIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
	event := events.IncidentUpdated{ID: incident.ID, Status: incident.Status}
	if err := s.updates.PublishUpdated(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to broadcast incident update")
	}
}
