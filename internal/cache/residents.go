package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"encomendas_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const residentsKeyPrefix = "residents:active:"

// ResidentCache - снимок активных жильцов кондоминиума для сопоставления этикеток
type ResidentCache interface {
	// Get возвращает (nil, false, nil) при промахе
	Get(ctx context.Context, condominiumID string) ([]models.Resident, bool, error)
	Set(ctx context.Context, condominiumID string, residents []models.Resident) error
	Invalidate(ctx context.Context, condominiumID string) error
}

// RedisResidentCache хранит снимок как JSON с TTL
type RedisResidentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResidentCache(client *redis.Client, ttl time.Duration) *RedisResidentCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisResidentCache{client: client, ttl: ttl}
}

// NewRedisClient разбирает redis://... URL
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func residentsKey(condominiumID string) string {
	return residentsKeyPrefix + condominiumID
}

func (c *RedisResidentCache) Get(ctx context.Context, condominiumID string) ([]models.Resident, bool, error) {
	data, err := c.client.Get(ctx, residentsKey(condominiumID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var residents []models.Resident
	if err := json.Unmarshal(data, &residents); err != nil {
		// битая запись - считаем промахом, ее перезапишет Set
		return nil, false, nil
	}
	return residents, true, nil
}

func (c *RedisResidentCache) Set(ctx context.Context, condominiumID string, residents []models.Resident) error {
	if residents == nil {
		residents = []models.Resident{}
	}
	data, err := json.Marshal(residents)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, residentsKey(condominiumID), data, c.ttl).Err()
}

func (c *RedisResidentCache) Invalidate(ctx context.Context, condominiumID string) error {
	return c.client.Del(ctx, residentsKey(condominiumID)).Err()
}

// NoopResidentCache - когда redis не настроен
type NoopResidentCache struct{}

func (NoopResidentCache) Get(context.Context, string) ([]models.Resident, bool, error) {
	return nil, false, nil
}
func (NoopResidentCache) Set(context.Context, string, []models.Resident) error { return nil }
func (NoopResidentCache) Invalidate(context.Context, string) error            { return nil }
