// -----------------------------------------------------------------------------
// Redis Connection Pool
// -----------------------------------------------------------------------------
// Redis bağlantı havuzu ve connection yönetimi.
//
// Bu dosya Redis sunucusuna bağlantı kurar ve connection pool yönetir.
// Redis cache driver'ı bu client üzerinde çalışır.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig, Redis bağlantı yapılandırması.
type RedisConfig struct {
	Host         string        `yaml:"host"`           // Redis sunucu adresi
	Port         int           `yaml:"port"`           // Redis port
	Password     string        `yaml:"password"`       // Redis şifresi (opsiyonel)
	DB           int           `yaml:"db"`             // Database numarası (0-15)
	PoolSize     int           `yaml:"pool_size"`      // Connection pool boyutu
	MinIdleConns int           `yaml:"min_idle_conns"` // Minimum idle connection sayısı
	MaxRetries   int           `yaml:"max_retries"`    // Maksimum retry sayısı
	DialTimeout  time.Duration `yaml:"dial_timeout"`   // Bağlantı timeout süresi
	ReadTimeout  time.Duration `yaml:"read_timeout"`   // Okuma timeout süresi
	WriteTimeout time.Duration `yaml:"write_timeout"`  // Yazma timeout süresi
}

// DefaultRedisConfig, varsayılan Redis yapılandırması.
//
// Production ortamı için önerilen değerler:
// - PoolSize: CPU core sayısının 2-4 katı
// - MinIdleConns: PoolSize'ın %25'i
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:         "127.0.0.1",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr, host:port biçiminde sunucu adresini döndürür.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisClient, redis.Client wrapper.
type RedisClient struct {
	client *redis.Client
	logger Logger
}

// NewRedisClient, yeni bir Redis client oluşturur.
//
// Connection pool'u başlatır ve bağlantıyı test eder.
//
// Parametreler:
//   - config: Redis yapılandırması (nil ise DefaultRedisConfig)
//   - logger: Log instance
//
// Döndürür:
//   - *RedisClient: Redis client instance
//   - error: Bağlantı hatası
//
// Örnek:
//
//	client, err := cache.NewRedisClient(cache.DefaultRedisConfig(), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func NewRedisClient(config *RedisConfig, logger Logger) (*RedisClient, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr(),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Printf("❌ Redis bağlantı hatası: %v", err)
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Printf("✅ Redis bağlantısı başarılı: %s (DB: %d)", config.Addr(), config.DB)

	return &RedisClient{client: client, logger: logger}, nil
}

// Client, raw redis.Client instance döndürür.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Ping, Redis sunucusunun erişilebilir olup olmadığını kontrol eder.
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close, Redis bağlantısını kapatır.
func (r *RedisClient) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Printf("❌ Redis kapatma hatası: %v", err)
		return err
	}

	r.logger.Println("✅ Redis bağlantısı kapatıldı")
	return nil
}
