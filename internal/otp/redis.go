package otp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps codes in redis so they survive restarts and expire
// server-side.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *RedisStore) key(email string) string { return "otp:" + email }

func (s *RedisStore) SetCode(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(email), code, ttl).Err()
}

func (s *RedisStore) GetCode(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, s.key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", err
	}
	return code, nil
}

func (s *RedisStore) DeleteCode(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.key(email)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
