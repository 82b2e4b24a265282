package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore is an alternative Store backend for deployments that already
// run Redis next to the app. Entries never expire on their own; the owning
// stores apply their own TTL policy on top.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to the given address and verifies it with a ping.
func OpenRedis(addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Get(key string, dest any) (bool, error) {
	payload, err := s.client.Get(context.Background(), s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return decode(payload, dest), nil
}

func (s *RedisStore) Set(key string, value any) error {
	payload, err := encode(value)
	if err != nil {
		return err
	}
	return s.client.Set(context.Background(), s.prefix+key, payload, 0).Err()
}

func (s *RedisStore) Clear(key string) error {
	return s.client.Del(context.Background(), s.prefix+key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
