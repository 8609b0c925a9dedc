// -----------------------------------------------------------------------------
// Cache Interface
// -----------------------------------------------------------------------------
// Sorgu sonuçlarının saklandığı cache sürücülerinin ortak arayüzü.
//
// Driver'lar: Memory, Redis, File
//
// Değerler ham byte dizileridir; serialization çağıranın işidir
// (database paketi sonuçları msgpack ile encode eder). Bu sayede her
// driver aynı veriyi birebir saklar ve geri verir.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache, tüm cache driver'ların implement etmesi gereken interface.
//
// Örnek kullanım:
//
//	var store cache.Cache = cache.NewMemoryCache(logger)
//	store.Set(ctx, "users:all", data, 10*time.Minute)
type Cache interface {
	// Get, cache'den veri okur.
	//
	// Key bulunamazsa veya süresi dolmuşsa found=false döner, hata vermez.
	//
	// Örnek:
	//   data, found, err := store.Get(ctx, "user:123")
	//   if err != nil {
	//       return err
	//   }
	//   if !found {
	//       // Cache miss
	//   }
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set, cache'e veri yazar.
	//
	// TTL = 0 ise süresiz saklanır (dikkatli kullan!).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete, cache'den veri siler. Key yoksa hata vermez.
	Delete(ctx context.Context, key string) error

	// Flush, driver'ın sahip olduğu tüm kayıtları temizler.
	//
	// UYARI: Bu operasyon geri alınamaz!
	Flush(ctx context.Context) error
}

// Stats, cache istatistikleri interface.
//
// Monitoring ve debugging için kullanılır.
// Tüm driver'lar optional olarak implement edebilir.
//
// Örnek:
//
//	if s, ok := store.(cache.Stats); ok {
//	    log.Printf("Cache stats: %+v", s.Stats())
//	}
type Stats interface {
	Stats() map[string]interface{}
}

// Logger, log interface'i (dependency injection için).
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Driver adları.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverFile   = "file"
	DriverNone   = "none"
)

// Options, New için driver seçenekleridir.
type Options struct {
	Driver string
	Prefix string
	Dir    string
	Redis  *RedisConfig
}

// New, seçilen driver'ı oluşturur. DriverNone veya boş driver için nil,
// nil döner; bu durumda sorgular cache'lenmez.
func New(opts Options, logger Logger) (Cache, error) {
	switch opts.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverMemory:
		return NewMemoryCache(logger), nil
	case DriverFile:
		return NewFileCache(opts.Dir, logger)
	case DriverRedis:
		client, err := NewRedisClient(opts.Redis, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisCache(client.Client(), logger, opts.Prefix), nil
	}
	return nil, fmt.Errorf("cache: unknown driver %q", opts.Driver)
}
