package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "pa"

// Redis implements [Store] on a Redis hash per namespace. One hash keeps
// GetAll a single HGETALL and gives HSET the per-key atomicity the contract
// requires.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps the given client. prefix namespaces this engine's hashes
// inside a shared Redis; empty means "pa".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

var _ Store = (*Redis)(nil)

func (s *Redis) hashKey(ns Namespace) string {
	return s.prefix + ":" + string(ns)
}

func (s *Redis) Get(ctx context.Context, ns Namespace, key string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.hashKey(ns), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (s *Redis) Set(ctx context.Context, ns Namespace, key string, value []byte) error {
	if err := s.client.HSet(ctx, s.hashKey(ns), key, value).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Redis) Delete(ctx context.Context, ns Namespace, key string) error {
	if err := s.client.HDel(ctx, s.hashKey(ns), key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Redis) List(ctx context.Context, ns Namespace) ([]string, error) {
	keys, err := s.client.HKeys(ctx, s.hashKey(ns)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return keys, nil
}

func (s *Redis) GetAll(ctx context.Context, ns Namespace) (map[string][]byte, error) {
	raw, err := s.client.HGetAll(ctx, s.hashKey(ns)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	out := make(map[string][]byte, len(raw))
	for k, v := range raw {
		out[k] = []byte(v)
	}
	return out, nil
}
