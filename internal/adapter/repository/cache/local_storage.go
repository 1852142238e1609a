package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/redis/go-redis/v9"
)

// LocalStorage is a durable string key/value store on Redis. Keys are
// prefixed with the namespace of the client session and never expire.
type LocalStorage struct {
	client    *redis.Client
	namespace string
}

func NewLocalStorage(ctx context.Context, addr, password string, db int, namespace string) (*LocalStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return NewLocalStorageFromClient(client, namespace), nil
}

func NewLocalStorageFromClient(client *redis.Client, namespace string) *LocalStorage {
	return &LocalStorage{client: client, namespace: namespace}
}

func (s *LocalStorage) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

// Get reports ok=false for a missing key.
func (s *LocalStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *LocalStorage) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *LocalStorage) Close() error {
	return s.client.Close()
}

var _ domain.LocalStorage = (*LocalStorage)(nil)
