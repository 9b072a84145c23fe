package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tensioapp/tensio/internal/config"
)

// Redis is the shared-cache backend for multi-replica deployments. Capacity
// is delegated to the Redis server policy, so Stats reports capacity 0.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(cfg config.CacheConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// Fallback to a plain address
		opts = &redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.RedisKeyPrefix
	if prefix == "" {
		prefix = "tensio:analysis:"
	}

	return &Redis{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (r *Redis) Get(ctx context.Context, patientID, kind string, params map[string]any) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+Key(patientID, kind, params)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, patientID, kind string, params map[string]any, artifact []byte) {
	r.client.Set(ctx, r.prefix+Key(patientID, kind, params), artifact, r.ttl)
}

func (r *Redis) Invalidate(ctx context.Context, patientID string) int {
	pattern := r.prefix + patientPrefix(patientID) + "*"
	removed := 0

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if r.client.Del(ctx, iter.Val()).Val() > 0 {
			removed++
		}
	}
	return removed
}

func (r *Redis) Stats(ctx context.Context) Stats {
	size := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		size++
	}
	return Stats{Size: size, Capacity: 0, TTL: r.ttl}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
