package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session:"

// NewRedisClient 创建 Redis 客户端并做一次连通性检查。
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisDirectory stores sessions as plain keys with an optional expiry, so several
// server instances can share them.
type RedisDirectory struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisDirectory wraps client. ttl <= 0 stores keys without expiry.
func NewRedisDirectory(client *redis.Client, ttl time.Duration) *RedisDirectory {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisDirectory{client: client, ttl: ttl, prefix: defaultRedisPrefix}
}

// WithPrefix changes the key prefix.
func (d *RedisDirectory) WithPrefix(prefix string) *RedisDirectory {
	if strings.TrimSpace(prefix) != "" {
		d.prefix = prefix
	}
	return d
}

func (d *RedisDirectory) key(token string) string {
	return d.prefix + token
}

// Bind stores or replaces the user bound to token.
func (d *RedisDirectory) Bind(ctx context.Context, token string, userID uint) error {
	key := strings.TrimSpace(token)
	if key == "" {
		return ErrEmptyToken
	}
	if err := d.client.Set(ctx, d.key(key), strconv.FormatUint(uint64(userID), 10), d.ttl).Err(); err != nil {
		return fmt.Errorf("bind session: %w", err)
	}
	return nil
}

// Resolve returns the user bound to token.
func (d *RedisDirectory) Resolve(ctx context.Context, token string) (uint, bool, error) {
	key := strings.TrimSpace(token)
	if key == "" {
		return 0, false, nil
	}

	raw, err := d.client.Get(ctx, d.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve session: %w", err)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("resolve session: malformed user id %q", raw)
	}
	return uint(id), true, nil
}

// Revoke deletes token.
func (d *RedisDirectory) Revoke(ctx context.Context, token string) error {
	key := strings.TrimSpace(token)
	if key == "" {
		return nil
	}
	if err := d.client.Del(ctx, d.key(key)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (d *RedisDirectory) Close() error {
	return d.client.Close()
}
