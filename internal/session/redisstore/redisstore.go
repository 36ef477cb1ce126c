package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"scriptorium/internal/models"
)

const keyPrefix = "scriptorium:session:"

// RedisStore keeps contributor sessions in Redis so that several bot
// instances can share them. Each session is a hash with "code" and
// "count" fields.
type RedisStore struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Assign sets or overwrites the user's session and resets the photo counter
func (s *RedisStore) Assign(ctx context.Context, userID int64, code string) error {
	err := s.client.HSet(ctx, sessionKey(userID), "code", code, "count", 0).Err()
	if err != nil {
		return fmt.Errorf("failed to assign session: %w", err)
	}
	return nil
}

// Lookup returns the user's current session, if any
func (s *RedisStore) Lookup(ctx context.Context, userID int64) (models.Session, bool, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return models.Session{}, false, fmt.Errorf("failed to look up session: %w", err)
	}
	code, ok := fields["code"]
	if !ok || code == "" {
		return models.Session{}, false, nil
	}

	sess := models.Session{AssignedCode: code}
	if countStr, ok := fields["count"]; ok {
		fmt.Sscanf(countStr, "%d", &sess.PhotoCount)
	}
	return sess, true, nil
}

// Increment bumps the user's photo counter and returns the new value
func (s *RedisStore) Increment(ctx context.Context, userID int64) (int, error) {
	n, err := s.client.HIncrBy(ctx, sessionKey(userID), "count", 1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment photo counter: %w", err)
	}
	return int(n), nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
