package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/weather-now/internal/weather"
)

// RedisStore keeps preferences under a namespaced Redis key, so several
// instances can share the preferred city.
type RedisStore struct {
	client *redis.Client
	key    string
}

// ConnectRedis parses url, connects and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewRedisStore stores the preferred city under "weather-now:<key>".
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    "weather-now:" + PreferredLocationKey,
	}
}

func (s *RedisStore) PreferredLocation(ctx context.Context) (string, error) {
	city, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read preferred location: %w", err)
	}
	return city, nil
}

func (s *RedisStore) SetPreferredLocation(ctx context.Context, city string) error {
	if err := s.client.Set(ctx, s.key, city, 0).Err(); err != nil {
		return fmt.Errorf("write preferred location: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ weather.PreferenceStore = (*RedisStore)(nil)
