// -----------------------------------------------------------------------------
// Redis Cache Driver
// -----------------------------------------------------------------------------
// Redis-based cache implementation.
//
// Birden fazla process aynı sorgu sonuçlarını paylaşacaksa önerilen driver.
//
// Özellikler:
// - TTL support (Redis EXPIRE)
// - Key prefix (namespace)
// - Flush sadece prefix'e ait key'leri siler (SCAN + DEL)
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache, Redis-based cache implementation.
type RedisCache struct {
	client redis.UniversalClient
	logger Logger
	prefix string // Key prefix (namespace)
}

// NewRedisCache, yeni bir Redis cache instance oluşturur.
//
// Parametreler:
//   - client: Redis client
//   - logger: Log instance
//   - prefix: Cache key prefix (opsiyonel, örn: "querykit:")
//
// Örnek:
//
//	store := cache.NewRedisCache(redisClient, logger, "querykit:")
//	store.Set(ctx, "users:all", data, 10*time.Minute)
//	// Gerçek key: "querykit:users:all"
func NewRedisCache(client redis.UniversalClient, logger Logger, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
		prefix: prefix,
	}
}

// prefixKey, key'e prefix ekler.
func (r *RedisCache) prefixKey(key string) string {
	return r.prefix + key
}

// Get, cache'den veri okur.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	prefixedKey := r.prefixKey(key)
	val, err := r.client.Get(ctx, prefixedKey).Bytes()

	// Key bulunamadı (cache miss)
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Printf("❌ Redis Get hatası [%s]: %v", prefixedKey, err)
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	return val, true, nil
}

// Set, cache'e veri yazar. ttl = 0 ise key süresiz saklanır.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	prefixedKey := r.prefixKey(key)
	if err := r.client.Set(ctx, prefixedKey, value, ttl).Err(); err != nil {
		r.logger.Printf("❌ Redis Set hatası [%s]: %v", prefixedKey, err)
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete, cache'den veri siler.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	prefixedKey := r.prefixKey(key)
	if err := r.client.Del(ctx, prefixedKey).Err(); err != nil {
		r.logger.Printf("❌ Redis Delete hatası [%s]: %v", prefixedKey, err)
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Flush, prefix'e ait tüm key'leri siler. Prefix boşsa tüm database
// temizlenir (FlushDB).
//
// UYARI: Prefix'siz kullanımda aynı DB'deki diğer uygulamaların verileri de
// silinir!
func (r *RedisCache) Flush(ctx context.Context) error {
	if r.prefix == "" {
		if err := r.client.FlushDB(ctx).Err(); err != nil {
			return fmt.Errorf("redis flush failed: %w", err)
		}
		r.logger.Println("⚠️  Redis database temizlendi (FlushDB)")
		return nil
	}

	var cursor uint64
	deleted := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	r.logger.Printf("⚠️  Redis cache temizlendi: %d key silindi (prefix: %s)", deleted, r.prefix)
	return nil
}

// Stats, Redis connection pool istatistiklerini döndürür.
func (r *RedisCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"driver": DriverRedis,
		"prefix": r.prefix,
	}
	if c, ok := r.client.(*redis.Client); ok {
		pool := c.PoolStats()
		stats["hits"] = pool.Hits
		stats["misses"] = pool.Misses
		stats["timeouts"] = pool.Timeouts
		stats["total_conns"] = pool.TotalConns
		stats["idle_conns"] = pool.IdleConns
	}
	return stats
}
