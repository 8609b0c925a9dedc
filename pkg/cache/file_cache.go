// -----------------------------------------------------------------------------
// File Cache Driver
// -----------------------------------------------------------------------------
// File-based cache implementation.
//
// Redis olmayan ama sonuçların restart sonrası da korunması istenen
// kurulumlar için.
//
// Özellikler:
// - Persistent (disk'e yazılır)
// - TTL support (periyodik temizlik)
// - Her key tek bir dosyadır; dosya adı key'in xxhash'idir
// - Entry'ler msgpack ile encode edilir
//
// Sınırlamalar:
// - Disk I/O (memory ve Redis'ten yavaş)
// - Single-server only
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// fileEntry, dosyada saklanan veri yapısı.
type fileEntry struct {
	Key       string `msgpack:"k"`
	Value     []byte `msgpack:"v"`
	ExpiresAt int64  `msgpack:"e"` // Unix timestamp, 0 = süresiz
}

// FileCache, file-based cache implementation.
type FileCache struct {
	dir    string
	logger Logger
	mu     sync.RWMutex
	now    func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewFileCache, yeni bir File cache instance oluşturur.
//
// Parametreler:
//   - dir: Cache dizini (örn: "./storage/cache"). Boşsa os.TempDir altında
//     "querykit-cache" kullanılır.
//   - logger: Log instance
//
// Örnek:
//
//	store, err := cache.NewFileCache("./storage/cache", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Stop()
func NewFileCache(dir string, logger Logger) (*FileCache, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "querykit-cache")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	fc := &FileCache{
		dir:    dir,
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	fc.wg.Add(1)
	go fc.garbageCollectionLoop(10 * time.Minute)

	logger.Printf("✅ File cache başlatıldı: %s", dir)
	return fc, nil
}

// filePath, key için dosya yolunu döndürür.
func (f *FileCache) filePath(key string) string {
	return filepath.Join(f.dir, strconv.FormatUint(xxhash.Sum64String(key), 16)+".cache")
}

// Get, cache'den veri okur.
func (f *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.RLock()
	entry, err := f.read(f.filePath(key))
	f.mu.RUnlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		f.logger.Printf("❌ File cache okuma hatası [%s]: %v", key, err)
		return nil, false, fmt.Errorf("file cache read failed: %w", err)
	}
	// Hash çakışması
	if entry.Key != key {
		return nil, false, nil
	}
	if entry.ExpiresAt > 0 && f.now().Unix() > entry.ExpiresAt {
		return nil, false, f.Delete(context.Background(), key)
	}
	return entry.Value, true, nil
}

// Set, cache'e veri yazar.
func (f *FileCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := fileEntry{Key: key, Value: value}
	if ttl > 0 {
		entry.ExpiresAt = f.now().Add(ttl).Unix()
	}

	data, err := msgpack.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("file cache encode failed: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Önce geçici dosyaya yaz, sonra rename; okuyucular yarım dosya görmez.
	path := f.filePath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		f.logger.Printf("❌ File cache yazma hatası [%s]: %v", key, err)
		return fmt.Errorf("file cache write failed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("file cache write failed: %w", err)
	}
	return nil
}

// Delete, cache'den veri siler.
func (f *FileCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.filePath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.Printf("❌ File cache silme hatası [%s]: %v", key, err)
		return fmt.Errorf("file cache delete failed: %w", err)
	}
	return nil
}

// Flush, tüm cache'i temizler.
func (f *FileCache) Flush(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.RemoveAll(f.dir); err != nil {
		f.logger.Printf("❌ Cache temizleme hatası: %v", err)
		return fmt.Errorf("cache flush failed: %w", err)
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate cache directory: %w", err)
	}

	f.logger.Println("⚠️  File cache tamamen temizlendi")
	return nil
}

// Stats, file cache istatistiklerini döndürür.
func (f *FileCache) Stats() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var fileCount int
	var totalSize int64
	filepath.WalkDir(f.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			fileCount++
			totalSize += info.Size()
		}
		return nil
	})

	return map[string]interface{}{
		"driver":     DriverFile,
		"directory":  f.dir,
		"file_count": fileCount,
		"total_size": totalSize,
	}
}

// Stop, temizlik goroutine'ini durdurur.
func (f *FileCache) Stop() {
	f.once.Do(func() { close(f.stop) })
	f.wg.Wait()
}

func (f *FileCache) read(path string) (*fileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry fileEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (f *FileCache) garbageCollectionLoop(interval time.Duration) {
	defer f.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.cleanExpiredFiles()
		case <-f.stop:
			return
		}
	}
}

// cleanExpiredFiles, expired ve bozuk dosyaları temizler.
func (f *FileCache) cleanExpiredFiles() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now().Unix()
	cleaned := 0

	filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		entry, err := f.read(path)
		if err != nil || (entry.ExpiresAt > 0 && now > entry.ExpiresAt) {
			if os.Remove(path) == nil {
				cleaned++
			}
		}
		return nil
	})

	if cleaned > 0 {
		f.logger.Printf("🧹 Garbage collection: %d expired file silindi", cleaned)
	}
	return cleaned
}
