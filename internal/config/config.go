// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Bu dosya, querykit'in merkezi konfigürasyon yönetimini sağlar.
//
// Yükleme sırası:
//  1. Varsayılan değerler (Default)
//  2. YAML dosyası (opsiyonel, LoadFile)
//  3. Ortam değişkenleri (her zaman en son uygulanır ve kazanır)
//
// Eksik ortam değişkenleri hata değildir; o alan bir önceki katmandaki
// değeri korur. Geçersiz değerler loglanır ve yok sayılır.
// -----------------------------------------------------------------------------

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/biyonik/querykit/pkg/cache"
	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Config, uygulamanın merkezi yapılandırma nesnesidir.
//
// Nested struct yapısı kullanılarak ilgili ayarlar gruplandırılmıştır:
//   - Database: Bağlantı ve havuz ayarları
//   - Cache: Remember için sonuç cache'i
//   - Redis: Redis cache driver bağlantısı
//   - Query: Merge, debug ve rate limit davranışı
type Config struct {
	Database DatabaseConfig    `yaml:"database"`
	Cache    CacheConfig       `yaml:"cache"`
	Redis    cache.RedisConfig `yaml:"redis"`
	Query    QueryConfig       `yaml:"query"`
}

// DatabaseConfig, veritabanı bağlantı ayarlarıdır.
//
// DSN boşsa User/Password/Host/Port/Name alanlarından FormatDSN ile üretilir.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`    // Maksimum açık bağlantı sayısı
	MaxIdleConns    int           `yaml:"max_idle_conns"`    // Maksimum boşta bekleyen bağlantı sayısı
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"` // Bağlantı maksimum ömrü
}

// CacheConfig, sorgu sonucu cache ayarlarıdır.
type CacheConfig struct {
	Driver  string        `yaml:"driver"`   // memory, redis, file, none
	Prefix  string        `yaml:"prefix"`   // Cache key prefix (namespace)
	TTL     time.Duration `yaml:"ttl"`      // Remember için varsayılan süre
	FileDir string        `yaml:"file_dir"` // File cache dizini (file driver için)
}

// QueryConfig, builder ve çalıştırma davranışıdır.
type QueryConfig struct {
	StrictMerge bool    `yaml:"strict_merge"` // Eksik parametrede hata ver
	Debug       bool    `yaml:"debug"`        // Her ifadeyi logla
	RateLimit   float64 `yaml:"rate_limit"`   // Saniye başına ifade, 0 = limitsiz
	RateBurst   int     `yaml:"rate_burst"`

	LogEvents     bool          `yaml:"log_events"`     // Sorgu event'lerini arka planda logla
	SlowThreshold time.Duration `yaml:"slow_threshold"` // Sadece bu süreyi aşan sorguları logla
}

// Default, varsayılan yapılandırmayı döndürür.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:            "127.0.0.1",
			Port:            3306,
			User:            "root",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Cache: CacheConfig{
			Driver: cache.DriverNone,
			Prefix: "querykit:",
			TTL:    10 * time.Minute,
		},
		Redis: *cache.DefaultRedisConfig(),
		Query: QueryConfig{RateBurst: 1},
	}
}

// Load, varsayılanların üzerine ortam değişkenlerini uygular.
//
// Örnek kullanım:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile, varsayılanların üzerine önce YAML dosyasını, sonra ortam
// değişkenlerini uygular. path boşsa dosya okunmaz.
//
// Parametreler:
//   - path: YAML dosya yolu (opsiyonel)
//
// Döndürür:
//   - *Config: Yapılandırma nesnesi
//   - error: Dosya okunamazsa, YAML geçersizse veya Validate başarısızsa
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv, tanımlı ortam değişkenlerini config'e uygular.
func (c *Config) applyEnv() {
	// Helper function: Ortam değişkeni varsa string olarak uygula
	setString := func(key string, dst *string) {
		if value, exists := os.LookupEnv(key); exists {
			*dst = value
		}
	}

	// Helper function: Integer ortam değişkeni
	setInt := func(key string, dst *int) {
		valueStr, exists := os.LookupEnv(key)
		if !exists {
			return
		}
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			log.Printf("⚠️  Uyarı: %s için geçersiz değer: %s, yok sayılıyor.", key, valueStr)
			return
		}
		*dst = value
	}

	// Helper function: Boolean ortam değişkeni
	setBool := func(key string, dst *bool) {
		valueStr, exists := os.LookupEnv(key)
		if !exists {
			return
		}
		value, err := strconv.ParseBool(valueStr)
		if err != nil {
			log.Printf("⚠️  Uyarı: %s için geçersiz boolean değer: %s, yok sayılıyor.", key, valueStr)
			return
		}
		*dst = value
	}

	// Helper function: Duration ortam değişkeni (saniye cinsinden)
	setSeconds := func(key string, dst *time.Duration) {
		seconds := -1
		setInt(key, &seconds)
		if seconds >= 0 {
			*dst = time.Duration(seconds) * time.Second
		}
	}

	// Helper function: Duration ortam değişkeni (milisaniye cinsinden)
	setMillis := func(key string, dst *time.Duration) {
		millis := -1
		setInt(key, &millis)
		if millis >= 0 {
			*dst = time.Duration(millis) * time.Millisecond
		}
	}

	setFloat := func(key string, dst *float64) {
		valueStr, exists := os.LookupEnv(key)
		if !exists {
			return
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			log.Printf("⚠️  Uyarı: %s için geçersiz değer: %s, yok sayılıyor.", key, valueStr)
			return
		}
		*dst = value
	}

	// Database Configuration
	setString("DB_DSN", &c.Database.DSN)
	setInt("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	setInt("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	setSeconds("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime)

	// Cache Configuration
	setString("CACHE_DRIVER", &c.Cache.Driver)
	setString("CACHE_PREFIX", &c.Cache.Prefix)
	setSeconds("CACHE_TTL", &c.Cache.TTL)
	setString("CACHE_FILE_DIR", &c.Cache.FileDir)

	// Redis Configuration
	setString("REDIS_HOST", &c.Redis.Host)
	setInt("REDIS_PORT", &c.Redis.Port)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setInt("REDIS_DB", &c.Redis.DB)

	// Query Configuration
	setBool("QUERY_STRICT_MERGE", &c.Query.StrictMerge)
	setFloat("QUERY_RATE_LIMIT", &c.Query.RateLimit)
	setBool("QUERY_DEBUG", &c.Query.Debug)
	setBool("QUERY_LOG_EVENTS", &c.Query.LogEvents)
	setMillis("QUERY_SLOW_THRESHOLD_MS", &c.Query.SlowThreshold)
}

// Validate, config değerlerinin geçerliliğini kontrol eder.
//
// Döndürür:
//   - error: Tüm validation hatalarının errors.Join ile birleşimi
func (c *Config) Validate() error {
	var errs []error

	if c.Database.DSN != "" {
		if _, err := mysql.ParseDSN(c.Database.DSN); err != nil {
			errs = append(errs, fmt.Errorf("geçersiz DB_DSN: %w", err))
		}
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("bağlantı havuzu limitleri negatif olamaz"))
	}

	switch c.Cache.Driver {
	case cache.DriverMemory, cache.DriverRedis, cache.DriverFile, cache.DriverNone, "":
	default:
		errs = append(errs, fmt.Errorf("geçersiz CACHE_DRIVER: %s (memory, redis, file veya none olmalı)", c.Cache.Driver))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL negatif olamaz"))
	}

	if c.Query.SlowThreshold < 0 {
		errs = append(errs, errors.New("QUERY_SLOW_THRESHOLD_MS negatif olamaz"))
	}
	if c.Query.RateLimit < 0 {
		errs = append(errs, errors.New("QUERY_RATE_LIMIT negatif olamaz"))
	}

	return errors.Join(errs...)
}

// FormatDSN, bağlantı için kullanılacak DSN'i döndürür. DSN alanı doluysa
// aynen döner; değilse ayrı alanlardan mysql.Config ile üretilir.
//
// Örnek:
//
//	cfg.Database = config.DatabaseConfig{User: "app", Host: "db", Port: 3306, Name: "shop"}
//	cfg.Database.FormatDSN() // app@tcp(db:3306)/shop?parseTime=true
func (d DatabaseConfig) FormatDSN() string {
	if d.DSN != "" {
		return d.DSN
	}

	mc := mysql.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	mc.DBName = d.Name
	mc.ParseTime = true
	return mc.FormatDSN()
}
