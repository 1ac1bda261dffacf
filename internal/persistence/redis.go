package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rasayana/storefront/internal/domain"
)

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{
		client: client,
		ttl:    90 * 24 * time.Hour,
	}
}

// RedisAdapter stores one JSON blob per owner. Guest sessions expire with the
// key TTL, which doubles as abandoned-cart cleanup.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisAdapter) Read(ctx context.Context, ownerID string) (*domain.PersistedState, error) {
	data, err := r.client.Get(ctx, stateKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var state domain.PersistedState
	if err2 := json.Unmarshal(data, &state); err2 != nil {
		return nil, fmt.Errorf("unmarshal state failed: %w", err2)
	}

	return &state, nil
}

func (r RedisAdapter) Write(ctx context.Context, ownerID string, state *domain.PersistedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state failed: %w", err)
	}

	if err := r.client.Set(ctx, stateKey(ownerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisAdapter) Delete(ctx context.Context, ownerID string) error {
	if err := r.client.Del(ctx, stateKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
