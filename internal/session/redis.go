package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// RedisStore keeps one bearer token per client ID in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore on an already connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// redisKey returns the Redis key for the given client ID.
func redisKey(clientID string) string {
	return "session:" + strings.ToLower(strings.TrimSpace(clientID))
}

// Load returns the stored token, or "" when none is stored.
func (s *RedisStore) Load(ctx context.Context, clientID string) (string, error) {
	val, err := s.client.Get(ctx, redisKey(clientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("loading session for %s: %w", clientID, err)
	}
	return val, nil
}

// Save stores token for clientID. A zero ttl keeps it until deleted.
func (s *RedisStore) Save(ctx context.Context, clientID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKey(clientID), token, ttl).Err(); err != nil {
		return fmt.Errorf("saving session for %s: %w", clientID, err)
	}
	return nil
}

// Delete removes the stored token for clientID.
func (s *RedisStore) Delete(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, redisKey(clientID)).Err(); err != nil {
		return fmt.Errorf("deleting session for %s: %w", clientID, err)
	}
	return nil
}
