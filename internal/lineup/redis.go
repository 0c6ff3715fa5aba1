package lineup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// UsersKey is the Redis set holding every user with a stored lineup.
const UsersKey = "lineup:users"

// Key returns the Redis key of a user's lineup.
func Key(userID string) string {
	return fmt.Sprintf("lineup:%s", userID)
}

type redisBackend struct {
	client *redis.Client
}

// NewRedis returns a Repository backed by Redis. Each lineup is a JSON
// string under Key(userID); UsersKey indexes the users.
//
// Precondition: client must be non-nil.
func NewRedis(client *redis.Client) Repository {
	if client == nil {
		panic("lineup.NewRedis: client must not be nil")
	}
	return &repo{b: &redisBackend{client: client}}
}

func (r *redisBackend) load(ctx context.Context, userID string) (*Lineup, error) {
	data, err := r.client.Get(ctx, Key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lineup from Redis: %w", err)
	}
	var l Lineup
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lineup: %w", err)
	}
	l.UserID = userID
	return &l, nil
}

func (r *redisBackend) save(ctx context.Context, l *Lineup) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal lineup: %w", err)
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, Key(l.UserID), string(data), 0)
	pipe.SAdd(ctx, UsersKey, l.UserID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save lineup in Redis: %w", err)
	}
	return nil
}

func (r *redisBackend) remove(ctx context.Context, userID string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, Key(userID))
	pipe.SRem(ctx, UsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete lineup from Redis: %w", err)
	}
	return nil
}
