package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staybook/internal/config"
	"staybook/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisSelectionStore keeps drafts in Redis so a session can resume its
// half-finished booking across process restarts.
type RedisSelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSelectionStore(client *redis.Client, ttl time.Duration) *RedisSelectionStore {
	return &RedisSelectionStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisSelectionStore) GetSelection(ctx context.Context, sessionKey string) (*models.Selection, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	key := "selection:" + sessionKey
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get selection from redis: %w", err)
	}

	var selection models.Selection
	if err := json.Unmarshal([]byte(val), &selection); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selection: %w", err)
	}

	return &selection, nil
}

func (r *RedisSelectionStore) SetSelection(ctx context.Context, selection *models.Selection) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := "selection:" + selection.SessionKey
	data, err := json.Marshal(selection)
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set selection in redis: %w", err)
	}

	return nil
}

func (r *RedisSelectionStore) ClearSelection(ctx context.Context, sessionKey string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := "selection:" + sessionKey
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete selection from redis: %w", err)
	}
	return nil
}

func (r *RedisSelectionStore) CheckRateLimit(ctx context.Context, sessionKey string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := "rate_limit:" + sessionKey
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
