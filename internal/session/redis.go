package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/civix-service/internal/domain"
)

const keyPrefix = "session:"

// RedisStore keeps live sessions in Redis with a TTL matching the token
// lifetime, so abandoned sessions expire without a reaper.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, sess *domain.Session) error {
	ttl := ttlUntil(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, keyPrefix+sess.ID, sess.UserID, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (string, error) {
	userID, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}
