// -----------------------------------------------------------------------------
// Database Connection
// -----------------------------------------------------------------------------
// Bu dosya, builder'ların ve ham SQL'in çalıştırıldığı Connection yapısını
// içerir. Connection; quote/merge işlemlerini, ifadelerin çalıştırılmasını,
// transaction durumunu ve isteğe bağlı yan servisleri (event, cache, rate
// limit) tek noktada toplar.
//
// Değerler driver'a parametre olarak bağlanmaz; SQL metnine literal olarak
// gömülür. Bu yüzden Connection'ın Escaper'ı driver'ın escape kurallarıyla
// uyumlu olmalıdır (MySQL için MySQLEscaper, SQLite için ANSIEscaper).
//
// Start ile açılan transaction, Commit/Rollback'e kadar bu Connection
// üzerinden çalıştırılan TÜM ifadeleri kapsar. Transaction açıkken aynı
// Connection farklı goroutine'lerden kullanılmamalıdır.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/biyonik/querykit/pkg/cache"
	"github.com/biyonik/querykit/pkg/events"
	"github.com/go-sql-driver/mysql"
	"golang.org/x/time/rate"
)

// Logger, log interface'i (dependency injection için). *log.Logger bu
// arayüzü sağlar.
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// EventDispatcher, sorgu event'lerini yayınlayan bileşendir.
// *events.Dispatcher bu arayüzü sağlar.
type EventDispatcher interface {
	Dispatch(event events.Event) error
}

// PoolConfig, Open ile açılan *sql.DB havuzunun ayarlarıdır.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig, havuz için varsayılan değerleri döndürür.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Connection, SQL ifadelerini çalıştıran ve builder üreten ana yapıdır.
type Connection struct {
	db     Beginner
	closer io.Closer

	escaper     Escaper
	logger      Logger
	debug       bool
	strictMerge bool
	pool        PoolConfig

	dispatcher  EventDispatcher
	cache       cache.Cache
	cachePrefix string
	limiter     *rate.Limiter

	mu sync.Mutex
	tx *sql.Tx

	lastInsertID atomic.Int64
}

// Option, Connection yapılandırma fonksiyonudur.
type Option func(*Connection)

// WithLogger, log çıktısının yazılacağı logger'ı belirler.
func WithLogger(logger Logger) Option {
	return func(c *Connection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEscaper, string literal escape kurallarını belirler.
func WithEscaper(esc Escaper) Option {
	return func(c *Connection) {
		if esc != nil {
			c.escaper = esc
		}
	}
}

// WithStrictMerge, eksik merge parametrelerinde hata dönülmesini sağlar.
func WithStrictMerge(strict bool) Option {
	return func(c *Connection) {
		c.strictMerge = strict
	}
}

// WithDebug, çalıştırılan her ifadenin loglanmasını açar.
func WithDebug(debug bool) Option {
	return func(c *Connection) {
		c.debug = debug
	}
}

// WithDispatcher, sorgu ve transaction event'lerinin yayınlanacağı
// dispatcher'ı belirler.
func WithDispatcher(d EventDispatcher) Option {
	return func(c *Connection) {
		c.dispatcher = d
	}
}

// WithCache, Remember için kullanılacak cache'i ve key prefix'ini belirler.
func WithCache(store cache.Cache, prefix string) Option {
	return func(c *Connection) {
		c.cache = store
		c.cachePrefix = prefix
	}
}

// WithRateLimit, saniyede en fazla perSecond ifade çalıştırılmasını sağlar.
// perSecond <= 0 ise limit uygulanmaz.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Connection) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithPool, Open ile açılan havuzun ayarlarını belirler.
func WithPool(pool PoolConfig) Option {
	return func(c *Connection) {
		c.pool = pool
	}
}

// New, mevcut bir *sql.DB veya *sql.Conn üzerinde Connection oluşturur.
//
// Parametreler:
//   - db: İfadeleri çalıştıracak executor
//   - opts: Yapılandırma seçenekleri
//
// Döndürür:
//   - *Connection
//
// Örnek:
//
//	db, _ := sql.Open("mysql", dsn)
//	conn := database.New(db, database.WithDebug(true))
func New(db Beginner, opts ...Option) *Connection {
	c := &Connection{
		db:      db,
		escaper: MySQLEscaper{},
		logger:  log.Default(),
		pool:    DefaultPoolConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open, verilen DSN ile MySQL veritabanına bağlanır.
//
// Bağlantı sırasında şu adımlar gerçekleştirilir:
//  1. DSN, mysql.ParseDSN ile doğrulanır.
//  2. sql.Open ile havuz oluşturulur ve PoolConfig uygulanır.
//  3. PingContext ile veritabanının ulaşılabilirliği kontrol edilir.
//  4. Hata varsa havuz kapatılır ve hata döner.
func Open(ctx context.Context, dsn string, opts ...Option) (*Connection, error) {
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("database: invalid dsn: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	c := New(db, opts...)
	db.SetMaxOpenConns(c.pool.MaxOpenConns)
	db.SetMaxIdleConns(c.pool.MaxIdleConns)
	db.SetConnMaxLifetime(c.pool.ConnMaxLifetime)

	c.logger.Println("Veritabanına bağlanılıyor...")
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	c.logger.Println("✅ Veritabanı bağlantısı başarılı!")

	c.closer = db
	return c, nil
}

// Close, Open ile açılan havuzu kapatır. New ile sarmalanan executor'lar
// çağıranın sorumluluğundadır.
func (c *Connection) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// DB, Connection'ın sarmaladığı executor'ı döndürür.
func (c *Connection) DB() Beginner {
	return c.db
}

// executor, açık bir transaction varsa onu, yoksa havuzu döndürür.
func (c *Connection) executor() Executor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

// -----------------------------------------------------------------------------
// STATEMENT EXECUTION
// -----------------------------------------------------------------------------

// Query, SQL'i çalıştırır ve satırları ileri yönlü okuyan bir Result döndürür.
// params verilmişse önce yer tutucular merge edilir.
//
// Result kullanıldıktan sonra Close edilmelidir (Rows, Values, Each gibi
// tüketen metodlar otomatik kapatır).
//
// Örnek:
//
//	res, err := conn.Query(ctx, "SELECT * FROM users WHERE id = ?", database.Int(1))
//	row, err := res.Row()
func (c *Connection) Query(ctx context.Context, query string, params ...Value) (*Result, error) {
	query, err := c.prepare(ctx, query, params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := c.executor().QueryContext(ctx, query)
	if err != nil {
		return nil, c.failed(query, start, err)
	}
	c.executed(query, start, -1)
	return newResult(rows), nil
}

// Fetch, SQL'i çalıştırır ve tüm satırları belleğe alır.
func (c *Connection) Fetch(ctx context.Context, query string, params ...Value) (*FetchedResult, error) {
	res, err := c.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	fetched, err := res.fetchAll()
	if err != nil {
		return nil, newQueryError(query, err)
	}
	return fetched, nil
}

// Execute, SQL'i çalıştırır ve etkilenen satır sayısını döndürür. Driver bir
// insert id döndürürse InsertedID ile okunabilir.
func (c *Connection) Execute(ctx context.Context, query string, params ...Value) (int64, error) {
	query, err := c.prepare(ctx, query, params)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	res, err := c.executor().ExecContext(ctx, query)
	if err != nil {
		return 0, c.failed(query, start, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, c.failed(query, start, err)
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		c.lastInsertID.Store(id)
	}
	c.executed(query, start, affected)
	return affected, nil
}

// InsertedID, Execute ile görülen son insert id'yi döndürür.
func (c *Connection) InsertedID() int64 {
	return c.lastInsertID.Load()
}

// prepare, parametreleri merge eder ve rate limiter'ı bekler.
func (c *Connection) prepare(ctx context.Context, query string, params []Value) (string, error) {
	if len(params) > 0 {
		merged, err := c.Merge(query, params...)
		if err != nil {
			return "", err
		}
		query = merged
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("database: rate limit: %w", err)
		}
	}
	return query, nil
}

func (c *Connection) executed(query string, start time.Time, affected int64) {
	elapsed := time.Since(start)
	if c.debug {
		c.logger.Printf("🔍 SQL (%s): %s", elapsed, query)
	}
	c.emit(events.EventQueryExecuted, events.QueryPayload{
		SQL:          query,
		Duration:     elapsed,
		RowsAffected: affected,
	})
}

func (c *Connection) failed(query string, start time.Time, err error) error {
	qerr := newQueryError(query, err)
	elapsed := time.Since(start)
	c.logger.Printf("❌ SQL hatası (%s): %v | %s", elapsed, err, query)
	c.emit(events.EventQueryFailed, events.QueryPayload{
		SQL:          query,
		Duration:     elapsed,
		RowsAffected: -1,
		Err:          qerr,
	})
	return qerr
}

func (c *Connection) emit(name string, payload events.QueryPayload) {
	if c.dispatcher == nil {
		return
	}
	if err := c.dispatcher.Dispatch(events.NewQueryEvent(name, payload)); err != nil {
		c.logger.Printf("⚠️  Event listener hatası (%s): %v", name, err)
	}
}

// -----------------------------------------------------------------------------
// BUILDER FACTORIES
// -----------------------------------------------------------------------------

// Select, SELECT tipinde yeni bir mutable builder döndürür.
//
// Örnek:
//
//	conn.Select("id", "username").From("users").Where("active = ?", database.Bool(true))
func (c *Connection) Select(exprs ...string) *Query {
	return c.Build().Select(exprs...)
}

// Insert, verilen tabloya INSERT builder'ı döndürür.
func (c *Connection) Insert(table string) *Query {
	return c.Build().Insert(table)
}

// Update, verilen tabloya UPDATE builder'ı döndürür.
func (c *Connection) Update(table string) *Query {
	return c.Build().Update(table)
}

// Upsert, verilen tabloya INSERT ... ON DUPLICATE KEY UPDATE builder'ı döndürür.
func (c *Connection) Upsert(table string) *Query {
	return c.Build().Upsert(table)
}

// Delete, verilen tablodan DELETE builder'ı döndürür.
func (c *Connection) Delete(table string) *Query {
	return c.Build().Delete(table)
}

// InsertValues, satırı hemen ekler ve etkilenen satır sayısını döndürür.
func (c *Connection) InsertValues(ctx context.Context, table string, fields Fields) (int64, error) {
	return c.Insert(table).Values(fields).Execute(ctx)
}

// UpdateWhere, koşula uyan satırları hemen günceller.
func (c *Connection) UpdateWhere(ctx context.Context, table string, fields Fields, where Criteria) (int64, error) {
	return c.Update(table).Set(fields).WhereMap(where).Execute(ctx)
}

// DeleteWhere, koşula uyan satırları hemen siler.
func (c *Connection) DeleteWhere(ctx context.Context, table string, where Criteria) (int64, error) {
	return c.Delete(table).WhereMap(where).Execute(ctx)
}

// -----------------------------------------------------------------------------
// TRANSACTIONS
// -----------------------------------------------------------------------------

// Start, yeni bir transaction başlatır. Commit veya Rollback'e kadar bu
// Connection üzerinden çalıştırılan tüm ifadeler transaction içinde çalışır.
//
// Döndürür:
//   - error: Zaten açık bir transaction varsa ErrNestedTransaction
func (c *Connection) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.tx != nil {
		c.mu.Unlock()
		return ErrNestedTransaction
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("database: failed to start transaction: %w", err)
	}
	c.tx = tx
	c.mu.Unlock()

	c.logger.Println("🔄 Transaction başladı.")
	c.emit(events.EventTransactionStarted, events.QueryPayload{SQL: "BEGIN", RowsAffected: -1})
	return nil
}

// Commit, açık transaction'ı onaylar.
//
// Döndürür:
//   - error: Açık transaction yoksa ErrNoTransaction, driver hatası varsa o
func (c *Connection) Commit() error {
	tx, err := c.release()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: failed to commit transaction: %w", err)
	}

	c.logger.Println("✅ Transaction commit edildi.")
	c.emit(events.EventTransactionCommitted, events.QueryPayload{SQL: "COMMIT", RowsAffected: -1})
	return nil
}

// Rollback, açık transaction'daki tüm değişiklikleri geri alır.
func (c *Connection) Rollback() error {
	tx, err := c.release()
	if err != nil {
		return err
	}
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("database: failed to rollback transaction: %w", err)
	}

	c.logger.Println("❌ Transaction geri alındı.")
	c.emit(events.EventTransactionRolledBack, events.QueryPayload{SQL: "ROLLBACK", RowsAffected: -1})
	return nil
}

// release, açık transaction'ı Connection'dan ayırır. *sql.Tx, Commit veya
// Rollback sonucundan bağımsız olarak bir daha kullanılamaz.
func (c *Connection) release() (*sql.Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tx == nil {
		return nil, ErrNoTransaction
	}
	tx := c.tx
	c.tx = nil
	return tx, nil
}

// InTransaction, açık bir transaction olup olmadığını döndürür.
func (c *Connection) InTransaction() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx != nil
}

// Transaction, fn'i bir transaction içinde çalıştırır.
//
// fn hata dönerse veya panic olursa transaction geri alınır; panic tekrar
// fırlatılır. Aksi halde commit edilir.
//
// Örnek:
//
//	err := conn.Transaction(ctx, func(ctx context.Context) error {
//	    if _, err := conn.InsertValues(ctx, "orders", order); err != nil {
//	        return err
//	    }
//	    _, err := conn.UpdateWhere(ctx, "stock", stock, where)
//	    return err
//	})
func (c *Connection) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := c.Rollback(); rbErr != nil {
				c.logger.Printf("❌ Panic sonrası rollback hatası: %v", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := c.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return c.Commit()
}
