package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expertise-backend/internal/photos"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// DefaultTTL is how long an untouched form session survives.
const DefaultTTL = 24 * time.Hour

// Redis stores form sessions in Redis with a sliding TTL: every save renews
// the expiry.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func key(id string) string {
	return "form_session:" + id
}

func (r *Redis) Create(ctx context.Context, limits photos.Limits) (*State, error) {
	state := NewState(uuid.New().String(), limits)
	if err := r.Save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *Redis) Get(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &state, nil
}

func (r *Redis) Save(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.ID, err)
	}
	if err := r.client.Set(ctx, key(state.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", state.ID, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
