// -----------------------------------------------------------------------------
// Memory Cache Driver
// -----------------------------------------------------------------------------
// In-memory cache implementation (non-persistent).
//
// Testing ve tek process'li kurulumlar için idealdir.
//
// Özellikler:
// - Thread-safe (sync.RWMutex)
// - TTL support (periyodik temizlik)
// - Set/Get değerleri kopyalar; çağıranın slice'ı sonradan değişse de
//   cache'teki kayıt etkilenmez
//
// Sınırlamalar:
// - Non-persistent (restart'ta kaybolur)
// - Single-server only (distributed değil)
// -----------------------------------------------------------------------------

package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// memoryEntry, memory'de saklanan veri yapısı.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero value = süresiz
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache, in-memory cache implementation.
type MemoryCache struct {
	store  map[string]*memoryEntry
	mu     sync.RWMutex
	logger Logger
	now    func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewMemoryCache, yeni bir Memory cache instance oluşturur ve 5 dakikada
// bir çalışan temizlik goroutine'ini başlatır. Kullanım bitince Stop
// çağrılmalıdır.
//
// Örnek:
//
//	store := cache.NewMemoryCache(logger)
//	defer store.Stop()
func NewMemoryCache(logger Logger) *MemoryCache {
	mc := &MemoryCache{
		store:  make(map[string]*memoryEntry),
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.garbageCollectionLoop(5 * time.Minute)

	logger.Println("✅ Memory cache başlatıldı")
	return mc
}

// Get, cache'den veri okur.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.store[key]
	if !exists || entry.expired(m.now()) {
		return nil, false, nil
	}
	return bytes.Clone(entry.value), true, nil
}

// Set, cache'e veri yazar.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.store[key] = &memoryEntry{value: bytes.Clone(value), expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Delete, cache'den veri siler.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.store, key)
	m.mu.Unlock()
	return nil
}

// Flush, tüm entry'leri siler.
func (m *MemoryCache) Flush(_ context.Context) error {
	m.mu.Lock()
	m.store = make(map[string]*memoryEntry)
	m.mu.Unlock()

	m.logger.Println("⚠️  Memory cache temizlendi")
	return nil
}

// Stats, memory cache istatistiklerini döndürür.
func (m *MemoryCache) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	valid := 0
	for _, entry := range m.store {
		if !entry.expired(now) {
			valid++
		}
	}

	return map[string]interface{}{
		"driver":       DriverMemory,
		"total_keys":   len(m.store),
		"valid_keys":   valid,
		"expired_keys": len(m.store) - valid,
	}
}

// Size, cache'deki toplam entry sayısını döndürür (süresi dolmuşlar dahil).
func (m *MemoryCache) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// Stop, temizlik goroutine'ini durdurur. Birden fazla çağrılabilir.
func (m *MemoryCache) Stop() {
	m.once.Do(func() { close(m.stop) })
	m.wg.Wait()
}

func (m *MemoryCache) garbageCollectionLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanExpiredEntries()
		case <-m.stop:
			return
		}
	}
}

// cleanExpiredEntries, expired entry'leri temizler.
func (m *MemoryCache) cleanExpiredEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cleaned := 0
	for key, entry := range m.store {
		if entry.expired(now) {
			delete(m.store, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Printf("🧹 Memory cache garbage collection: %d expired entry silindi", cleaned)
	}
	return cleaned
}
