package database

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/biyonik/querykit/pkg/events"
	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// -----------------------------------------------------------------------------
// QUERY CACHE (REMEMBER)
// -----------------------------------------------------------------------------
// "Cache'de varsa al, yoksa çalıştır ve cache'le" pattern'inin sorgu
// sonuçlarına uygulanmış hali.
//
// Key: <prefix><xxhash64(sql) hex>. Değerler SQL metnine gömüldüğü için aynı
// metin her zaman aynı sonucu ister; key'e ayrıca parametre eklenmez.
//
// Değer: kolon adları ve satır hücreleri msgpack ile encode edilir.
// -----------------------------------------------------------------------------

type cachedResult struct {
	Columns []string `msgpack:"c"`
	Rows    [][]any  `msgpack:"r"`
}

// Remember, sorgunun sonucunu cache'den okur. Cache'de yoksa veya cache
// okunamazsa sorgu çalıştırılır ve sonuç ttl süresince saklanır.
// WithCache verilmemişse doğrudan Fetch çalışır.
//
// Cache hataları sorguyu engellemez; sadece loglanır.
//
// Örnek:
//
//	res, err := conn.Select().From("countries").Remember(ctx, time.Hour)
func (c *Connection) Remember(ctx context.Context, ttl time.Duration, query string) (*FetchedResult, error) {
	if c.cache == nil {
		return c.Fetch(ctx, query)
	}

	key := c.cacheKey(query)
	data, found, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Printf("❌ Cache okuma hatası [%s]: %v", key, err)
	case found:
		res, err := decodeFetched(data)
		if err == nil {
			if c.debug {
				c.logger.Printf("🎯 Cache hit [%s]", key)
			}
			c.emit(events.EventCacheHit, events.QueryPayload{SQL: query, RowsAffected: -1})
			return res, nil
		}
		c.logger.Printf("⚠️  Bozuk cache kaydı [%s]: %v", key, err)
	}

	c.emit(events.EventCacheMiss, events.QueryPayload{SQL: query, RowsAffected: -1})
	res, err := c.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeFetched(res)
	if err != nil {
		c.logger.Printf("❌ Cache encode hatası [%s]: %v", key, err)
		return res, nil
	}
	if err := c.cache.Set(ctx, key, encoded, ttl); err != nil {
		c.logger.Printf("❌ Cache yazma hatası [%s]: %v", key, err)
	}
	return res, nil
}

// Forget, sorgunun cache kaydını siler.
func (c *Connection) Forget(ctx context.Context, query string) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, c.cacheKey(query))
}

func (c *Connection) cacheKey(query string) string {
	return c.cachePrefix + strconv.FormatUint(xxhash.Sum64String(query), 16)
}

func encodeFetched(res *FetchedResult) ([]byte, error) {
	return msgpack.Marshal(cachedResult{Columns: res.columns, Rows: res.rows})
}

func decodeFetched(data []byte) (*FetchedResult, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var cached cachedResult
	if err := dec.Decode(&cached); err != nil {
		return nil, err
	}
	for _, cells := range cached.Rows {
		for i, cell := range cells {
			cells[i] = widenCell(cell)
		}
	}
	return NewFetchedResult(cached.Columns, cached.Rows), nil
}

// widenCell, msgpack'in kompakt tamsayı tiplerini int64'e, float32'yi
// float64'e genişletir. Böylece cache'den okunan hücreler driver'dan
// okunanlarla aynı tipte olur.
func widenCell(v any) any {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= 1<<63-1 {
			return int64(n)
		}
	case float32:
		return float64(n)
	}
	return v
}
