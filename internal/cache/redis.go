package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/lefthq/left-backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient wraps redis.Client. All methods are nil-safe so callers can
// treat a missing Redis deployment as a cache that never hits.
type RedisClient struct {
	client *redis.Client
}

var globalRedis *RedisClient

// ErrCacheMiss is returned by Get when the key does not exist or no
// Redis client is configured.
var ErrCacheMiss = redis.Nil

// NewRedisClient creates and pings a Redis client.
func NewRedisClient(host, port, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	rc := &RedisClient{client: client}
	globalRedis = rc

	logger.Log.Info("Redis client connected", zap.String("address", addr))
	return rc, nil
}

// GetRedisClient returns the global Redis client, possibly nil.
func GetRedisClient() *RedisClient {
	return globalRedis
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Get retrieves a value; returns ErrCacheMiss if absent or unconfigured
func (rc *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if rc == nil || rc.client == nil {
		return "", ErrCacheMiss
	}
	return rc.client.Get(ctx, key).Result()
}

// SetEx stores a value with an expiration
func (rc *RedisClient) SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Del deletes one or more keys
func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Del(ctx, keys...).Err()
}

// DelPattern deletes all keys matching a glob pattern via SCAN
func (rc *RedisClient) DelPattern(ctx context.Context, pattern string) error {
	if rc == nil || rc.client == nil {
		return nil
	}

	iter := rc.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.client.Del(ctx, keys...).Err()
}
