package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/railguard/internal/config"
)

// NewRedisClient создает клиент Redis для кэша, очереди уведомлений и канала обновлений
func NewRedisClient(ctx context.Context, appCfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        appCfg.RedisAddr,
		Password:    appCfg.RedisPass,
		DB:          appCfg.RedisDB,
		PoolSize:    20,
		DialTimeout: 5 * time.Second,
		// BRPOP и подписки на обновления держат соединения долго
		MinIdleConns: 2,
	})

	// Проверяем соединение с Redis
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("не удалось выполнить ping к redis %s: %w", appCfg.RedisAddr, err)
	}

	return rdb, nil
}
