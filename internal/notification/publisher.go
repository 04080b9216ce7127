package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/railguard/internal/models"
)

const (
	jobQueueKey = "notification_jobs"
)

// Kind - тип уведомления
type Kind string

const (
	KindSOS       Kind = "sos"
	KindSLABreach Kind = "sla_breach"
)

// Job - задание на рассылку уведомлений по одному инциденту
type Job struct {
	Kind        Kind      `json:"kind"`
	IncidentID  string    `json:"incident_id"`
	BusinessID  string    `json:"business_id,omitempty"`
	IssueType   string    `json:"issue_type"`
	PhoneNumber string    `json:"phone_number"`
	Station     string    `json:"station"`
	AudioURL    string    `json:"audio_url,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewJob собирает задание из записи инцидента
func NewJob(kind Kind, incident *models.Incident) Job {
	return Job{
		Kind:        kind,
		IncidentID:  incident.ID,
		BusinessID:  incident.IncidentID,
		IssueType:   incident.IssueType,
		PhoneNumber: incident.PhoneNumber,
		Station:     incident.Station,
		AudioURL:    incident.AudioURL,
		Timestamp:   time.Now().UTC(),
	}
}

// Publisher - интерфейс для постановки уведомлений в очередь
type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

// RedisPublisher - реализация Publisher, использующая список Redis как очередь
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish кладет задание в левую часть очереди, воркер забирает справа
func (p *RedisPublisher) Publish(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal notification job: %w", err)
	}

	if err := p.redisClient.LPush(ctx, jobQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification job to Redis: %w", err)
	}
	return nil
}
