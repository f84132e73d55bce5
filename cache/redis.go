package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DanielAlexandrow/next-ecommerce-sub000/models"
)

const dealsKey = "deals:active"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context) ([]models.Deal, error) {
	data, err := r.client.Get(ctx, dealsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var deals []models.Deal
	if err := json.Unmarshal(data, &deals); err != nil {
		return nil, fmt.Errorf("unmarshal deals failed: %w", err)
	}
	return deals, nil
}

func (r *RedisCache) Set(ctx context.Context, deals []models.Deal) error {
	data, err := json.Marshal(deals)
	if err != nil {
		return fmt.Errorf("marshal deals failed: %w", err)
	}

	// Jitter spreads expiry so every instance does not refetch at once.
	ttl := r.baseTTL + time.Duration(rand.Intn(15))*time.Second
	if err := r.client.Set(ctx, dealsKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, dealsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
