package session

import (
	"context"
	"time"

	"github.com/turtacn/MolScope/internal/infrastructure/database/redis"
	"github.com/turtacn/MolScope/pkg/errors"
)

// DefaultKeyPrefix namespaces session keys in a shared Redis.
const DefaultKeyPrefix = "molscope:session:"

// RedisStore keeps sessions in Redis with a per-key expiry, so several
// server replicas can share them.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*Data, error) {
	blob, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSessionStore, "load session")
	}
	d, err := decode(blob)
	if err != nil {
		return nil, err
	}
	if err := s.client.Expire(ctx, s.key(id), s.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSessionStore, "refresh session ttl")
	}
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data *Data) error {
	blob, err := encode(data)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(id), blob, s.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSessionStore, "save session")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSessionStore, "delete session")
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.CountKeys(ctx, s.prefix+"*")
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSessionStore, "count sessions")
	}
	return n, nil
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *RedisStore) Backend() string { return BackendRedis }

var _ Store = (*RedisStore)(nil)
