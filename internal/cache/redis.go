package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stayinn/backend/config"
	"github.com/stayinn/backend/internal/domain"
)

type RedisCache struct {
	client    *redis.Client
	villasTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, villasTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		villasTTL: villasTTL,
	}
}

func (c *RedisCache) GetVillas(ctx context.Context) ([]domain.Villa, error) {
	data, err := c.client.Get(ctx, villasKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var villas []domain.Villa
	if err := json.Unmarshal(data, &villas); err != nil {
		return nil, err
	}
	return villas, nil
}

func (c *RedisCache) SetVillas(ctx context.Context, villas []domain.Villa) error {
	payload, err := json.Marshal(villas)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, villasKey(), payload, c.villasTTL).Err()
}

// AcquireVillaLock takes a short-lived exclusive lock on a villa while a
// booking create runs. The database transaction is the correctness anchor;
// this lock only narrows the window in which racing creates hit it.
func (c *RedisCache) AcquireVillaLock(ctx context.Context, villaID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, villaLockKey(villaID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseVillaLock(ctx context.Context, villaID int64) error {
	return c.client.Del(ctx, villaLockKey(villaID)).Err()
}

func villasKey() string {
	return "cache:villas"
}

func villaLockKey(villaID int64) string {
	return fmt.Sprintf("lock:villa:%d", villaID)
}
