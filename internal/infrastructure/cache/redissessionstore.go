package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shoppingos/sospay/internal/domain/session"
)

var _ session.Store = (*RedisSessionStore)(nil)

// RedisSessionStore keeps session values as JSON under <prefix><session id>:<key>.
// Every write refreshes the key's TTL.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, prefix string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisSessionStore) Load(id string) session.Session {
	return &redisSession{store: s, id: id}
}

type redisSession struct {
	store *RedisSessionStore
	id    string
}

func (r *redisSession) ID() string {
	return r.id
}

func (r *redisSession) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.store.client.Get(ctx, r.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read session key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode session key %s: %w", key, err)
	}
	return true, nil
}

func (r *redisSession) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session key %s: %w", key, err)
	}

	if err := r.store.client.Set(ctx, r.buildKey(key), data, r.store.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session key %s: %w", key, err)
	}
	return nil
}

func (r *redisSession) Delete(ctx context.Context, key string) error {
	if err := r.store.client.Del(ctx, r.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete session key %s: %w", key, err)
	}
	return nil
}

func (r *redisSession) buildKey(key string) string {
	return r.store.prefix + r.id + ":" + key
}
