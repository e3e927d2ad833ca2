package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"tours-backend/pkg/redis"

	redisClient "github.com/redis/go-redis/v9"
)

// RedisManager implements Manager on the shared Redis connection.
type RedisManager struct {
	client *redis.Client
	config Config
	ctx    context.Context

	totalHits   atomic.Int64
	totalMisses atomic.Int64
}

func NewRedisManager(client *redis.Client, config Config) *RedisManager {
	return &RedisManager{
		client: client,
		config: config,
		ctx:    context.Background(),
	}
}

func (r *RedisManager) key(key string) string {
	return r.config.KeyPrefix + key
}

func (r *RedisManager) tagKey(tag string) string {
	return r.config.KeyPrefix + r.config.TagPrefix + tag
}

// Get loads a cached value into dest. found=false means a miss.
func (r *RedisManager) Get(key string, dest interface{}) (bool, error) {
	data, err := r.client.GetClient().Get(r.ctx, r.key(key)).Result()
	if err != nil {
		if err == redisClient.Nil {
			r.totalMisses.Add(1)
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value for %s: %w", key, err)
	}

	r.totalHits.Add(1)
	return true, nil
}

// Set stores a value and registers it under the given tags so whole
// groups of derived keys can be invalidated on writes.
func (r *RedisManager) Set(key string, value interface{}, ttl time.Duration, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}

	fullKey := r.key(key)
	if err := r.client.GetClient().Set(r.ctx, fullKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}

	for _, tag := range tags {
		if err := r.client.GetClient().SAdd(r.ctx, r.tagKey(tag), fullKey).Err(); err != nil {
			log.Printf("failed to tag cache key %s with %s: %v", key, tag, err)
		}
	}
	return nil
}

func (r *RedisManager) Delete(key string) error {
	return r.client.GetClient().Del(r.ctx, r.key(key)).Err()
}

// InvalidateByTag deletes every key registered under the tag, then the
// tag set itself.
func (r *RedisManager) InvalidateByTag(tag string) error {
	tagKey := r.tagKey(tag)
	members, err := r.client.GetClient().SMembers(r.ctx, tagKey).Result()
	if err != nil {
		if err == redisClient.Nil {
			return nil
		}
		return fmt.Errorf("failed to read tag %s: %w", tag, err)
	}

	if len(members) > 0 {
		if err := r.client.GetClient().Del(r.ctx, members...).Err(); err != nil {
			return fmt.Errorf("failed to invalidate keys for tag %s: %w", tag, err)
		}
	}
	return r.client.GetClient().Del(r.ctx, tagKey).Err()
}

func (r *RedisManager) Stats() Stats {
	hits := r.totalHits.Load()
	misses := r.totalMisses.Load()
	stats := Stats{TotalHits: hits, TotalMisses: misses}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

func (r *RedisManager) HealthCheck() error {
	ctx, cancel := context.WithTimeout(r.ctx, 3*time.Second)
	defer cancel()
	return r.client.GetClient().Ping(ctx).Err()
}
