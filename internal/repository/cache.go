package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/railguard/internal/models"
	"github.com/shenikar/railguard/internal/service"
)

type IncidentCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewIncidentCache(rdb *redis.Client, ttl time.Duration) service.IncidentCache {
	return &IncidentCache{redis: rdb, ttl: ttl}
}

func incidentCacheKey(key string) string {
	return fmt.Sprintf("incident:%s", key)
}

// GetIncidentFromCache получает инцидент из кеша. Промах возвращает (nil, nil).
func (c *IncidentCache) GetIncidentFromCache(ctx context.Context, key string) (*models.Incident, error) {
	val, err := c.redis.Get(ctx, incidentCacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	var incident models.Incident
	if err := json.Unmarshal([]byte(val), &incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return &incident, nil
}

// SetIncidentCache сохраняет инцидент в кеш под ключом key
func (c *IncidentCache) SetIncidentCache(ctx context.Context, key string, incident *models.Incident) error {
	data, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := c.redis.Set(ctx, incidentCacheKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set incident cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет записи кеша под всеми идентификаторами инцидента
func (c *IncidentCache) InvalidateIncidentCache(ctx context.Context, incident *models.Incident) error {
	keys := cacheKeysFor(incident)
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}

func cacheKeysFor(incident *models.Incident) []string {
	aliases := incident.Aliases()
	keys := make([]string, len(aliases))
	for i, a := range aliases {
		keys[i] = incidentCacheKey(a)
	}
	return keys
}
