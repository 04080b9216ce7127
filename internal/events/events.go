package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/railguard/internal/models"
	"github.com/sirupsen/logrus"
)

// UpdatedChannel - имя канала, в который уходят изменения инцидентов
const UpdatedChannel = "incident:updated"

// IncidentUpdated - оповещение об изменении инцидента.
// ID - первичный ключ записи, Status - новый статус (если менялся).
type IncidentUpdated struct {
	ID     string        `json:"id"`
	Status models.Status `json:"status,omitempty"`
}

// Publisher рассылает оповещения об изменениях
type Publisher interface {
	PublishUpdated(ctx context.Context, event IncidentUpdated) error
}

// Subscriber отдает поток оповещений до отмены ctx
type Subscriber interface {
	SubscribeUpdated(ctx context.Context) (<-chan IncidentUpdated, error)
}

// RedisBroadcaster - Publisher и Subscriber поверх Redis Pub/Sub
type RedisBroadcaster struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisBroadcaster(client *redis.Client, logger *logrus.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, logger: logger}
}

// PublishUpdated публикует оповещение в канал incident:updated
func (b *RedisBroadcaster) PublishUpdated(ctx context.Context, event IncidentUpdated) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, UpdatedChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish incident update: %w", err)
	}
	return nil
}

// SubscribeUpdated подписывается на канал. Канал результата закрывается после отмены ctx.
func (b *RedisBroadcaster) SubscribeUpdated(ctx context.Context) (<-chan IncidentUpdated, error) {
	sub := b.client.Subscribe(ctx, UpdatedChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", UpdatedChannel, err)
	}

	out := make(chan IncidentUpdated, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				event, err := Decode(msg.Payload)
				if err != nil {
					b.logger.WithError(err).WithField("payload", msg.Payload).Warn("Skipping malformed incident update")
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func Encode(event IncidentUpdated) (string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal incident update: %w", err)
	}
	return string(payload), nil
}

// Decode разбирает оповещение; событие без id считается ошибкой
func Decode(payload string) (IncidentUpdated, error) {
	var event IncidentUpdated
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return IncidentUpdated{}, fmt.Errorf("failed to unmarshal incident update: %w", err)
	}
	if event.ID == "" {
		return IncidentUpdated{}, fmt.Errorf("incident update without id")
	}
	return event, nil
}
