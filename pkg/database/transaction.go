// pkg/database/transaction.go
//
// Bu dosya, tablo kilitleri (LOCK TABLES) ile birlikte çalışan
// transaction yardımcısını içerir.
//
// MySQL'de tablo kilitleri bağlantıya aittir: LOCK TABLES hangi bağlantıda
// çalıştıysa UNLOCK TABLES de aynı bağlantıda çalışmalıdır. *sql.DB ise her
// ifade için havuzdan rastgele bir bağlantı seçer. Bu yüzden Run, havuzdan
// tek bir *sql.Conn ayırır ve tüm işi o bağlantıya sabitlenmiş bir
// Connection üzerinden yürütür.
//
// Örnek kullanım:
//
//   err := database.NewTransaction(conn).
//       WithWriteLock("orders").
//       WithReadLock("products").
//       Run(ctx, func(ctx context.Context, tx *database.Connection) error {
//           _, err := tx.InsertValues(ctx, "orders", order)
//           return err
//       })
//
// Run'ın adımları: start → lock → fn → commit → unlock. Herhangi bir adım
// hata verirse transaction geri alınır, kilitler bırakılır ve ilk hata döner.
//
// Not: MySQL, LOCK TABLES çalıştığında açık transaction'ı örtük olarak commit
// eder. Kilitlerin transaction ile birlikte geri alınması gerekiyorsa
// InnoDB satır kilitleri (SELECT ... FOR UPDATE) tercih edilmelidir.

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Lock modları.
const (
	LockRead  = "READ"
	LockWrite = "WRITE"
)

// Transaction, kilit listesini ve kilit durumunu tutar.
type Transaction struct {
	conn   *Connection
	active *Connection
	locks  []string
	locked bool
}

// NewTransaction, verilen bağlantı için yeni bir Transaction oluşturur.
func NewTransaction(conn *Connection) *Transaction {
	return &Transaction{conn: conn, active: conn}
}

// WithLock, tablolara verilen modda kilit ekler. Tablo adı alias
// içerebilir: "users AS u".
//
// Örnek:
//
//	tx.WithLock("write", "users", "groups")
//	tx.Locks() // users WRITE,groups WRITE
func (t *Transaction) WithLock(mode string, tables ...string) *Transaction {
	mode = strings.ToUpper(mode)
	for _, table := range tables {
		t.locks = append(t.locks, table+" "+mode)
	}
	return t
}

// WithReadLock, tablolara READ kilidi ekler.
func (t *Transaction) WithReadLock(tables ...string) *Transaction {
	return t.WithLock(LockRead, tables...)
}

// WithWriteLock, tablolara WRITE kilidi ekler.
func (t *Transaction) WithWriteLock(tables ...string) *Transaction {
	return t.WithLock(LockWrite, tables...)
}

// Locks, LOCK TABLES ifadesine eklenecek kilit listesini döndürür.
func (t *Transaction) Locks() string {
	return strings.Join(t.locks, ",")
}

// Lock, tanımlı kilitleri alır. Kilit tanımlı değilse hiçbir şey yapmaz.
//
// Döndürür:
//   - error: Kilitler zaten alınmışsa ErrAlreadyLocked (MySQL ikinci
//     LOCK TABLES'ta mevcut kilitleri bırakır)
func (t *Transaction) Lock(ctx context.Context) error {
	if len(t.locks) == 0 {
		return nil
	}
	if t.locked {
		return ErrAlreadyLocked
	}
	if _, err := t.active.Execute(ctx, "LOCK TABLES "+t.Locks()); err != nil {
		return err
	}
	t.locked = true
	t.active.logger.Printf("🔒 Tablolar kilitlendi: %s", t.Locks())
	return nil
}

// Unlock, alınmış kilitleri bırakır. Kilit tanımlı değilse hiçbir şey yapmaz.
//
// Döndürür:
//   - error: Kilit alınmamışsa ErrNotLocked
func (t *Transaction) Unlock(ctx context.Context) error {
	if len(t.locks) == 0 {
		return nil
	}
	if !t.locked {
		return ErrNotLocked
	}
	if _, err := t.active.Execute(ctx, "UNLOCK TABLES"); err != nil {
		return err
	}
	t.locked = false
	t.active.logger.Println("🔓 Tablo kilitleri bırakıldı.")
	return nil
}

// conner, havuzdan tek bir bağlantı ayırabilen executor'dır (*sql.DB).
type conner interface {
	Conn(ctx context.Context) (*sql.Conn, error)
}

// Run, fn'i kilitli bir transaction içinde çalıştırır.
//
// fn'e verilen Connection tek bir fiziksel bağlantıya sabitlenmiştir; fn
// içindeki tüm ifadeler bu Connection üzerinden çalıştırılmalıdır.
//
// Döndürür:
//   - error: fn'in veya start/lock/commit/unlock adımlarının ilk hatası
func (t *Transaction) Run(ctx context.Context, fn func(ctx context.Context, conn *Connection) error) (err error) {
	if p, ok := t.conn.db.(conner); ok {
		sqlConn, err := p.Conn(ctx)
		if err != nil {
			return fmt.Errorf("database: failed to pin connection: %w", err)
		}
		defer sqlConn.Close()
		t.active = t.conn.pinned(sqlConn)
		defer func() { t.active = t.conn }()
	}

	started, committed := false, false
	defer func() {
		p := recover()
		if err == nil && p == nil {
			return
		}
		if started {
			if rbErr := t.active.Rollback(); rbErr != nil && !errors.Is(rbErr, ErrNoTransaction) {
				t.active.logger.Printf("❌ Rollback hatası: %v", rbErr)
			}
		}
		// Commit sonrası Unlock zaten denendi; ikinci kez denenmez.
		if t.locked && !committed {
			if ulErr := t.Unlock(ctx); ulErr != nil {
				t.active.logger.Printf("❌ Unlock hatası: %v", ulErr)
			}
		}
		if p != nil {
			panic(p)
		}
	}()

	if err = t.active.Start(ctx); err != nil {
		return err
	}
	started = true
	if err = t.Lock(ctx); err != nil {
		return err
	}
	if err = fn(ctx, t.active); err != nil {
		return err
	}
	started = false
	if err = t.active.Commit(); err != nil {
		return err
	}
	committed = true
	return t.Unlock(ctx)
}

// pinned, aynı ayarlarla verilen executor'a bağlı yeni bir Connection
// döndürür.
func (c *Connection) pinned(db Beginner) *Connection {
	return &Connection{
		db:          db,
		escaper:     c.escaper,
		logger:      c.logger,
		debug:       c.debug,
		strictMerge: c.strictMerge,
		pool:        c.pool,
		dispatcher:  c.dispatcher,
		cache:       c.cache,
		cachePrefix: c.cachePrefix,
		limiter:     c.limiter,
	}
}
