package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"auction-house/internal/config"
	"auction-house/utils"
)

// MemoryDeduper keeps claimed keys in process memory.
type MemoryDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

// NewMemoryDeduper creates a deduper whose claims expire after ttl. ttl <= 0 keeps them forever.
func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	return &MemoryDeduper{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

func (m *MemoryDeduper) Claim(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if at, ok := m.seen[key]; ok && (m.ttl <= 0 || now.Sub(at) < m.ttl) {
		return false, nil
	}
	m.seen[key] = now
	return true, nil
}

func (m *MemoryDeduper) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, key)
	return nil
}

// RedisDeduper claims keys with SET NX so that every process sharing the redis sees one delivery.
type RedisDeduper struct {
	client *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisDeduper connects to redis and verifies the connection.
func NewRedisDeduper(ctx context.Context, cfg config.Redis, ttl time.Duration) (*RedisDeduper, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	utils.Info("redis dedupe connected", map[string]any{"addr": cfg.Addr})
	return NewRedisDeduperFromClient(client, ttl), nil
}

// NewRedisDeduperFromClient wraps an existing client.
func NewRedisDeduperFromClient(client *goredis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl, prefix: "auction-house:notified:"}
}

func (r *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("dedupe key is required")
	}
	ok, err := r.client.SetNX(ctx, r.prefix+key, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (r *RedisDeduper) Release(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *RedisDeduper) Close() error {
	return r.client.Close()
}
