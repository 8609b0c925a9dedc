package database

import (
	"context"
	"time"
)

// -----------------------------------------------------------------------------
// STATEMENT
// -----------------------------------------------------------------------------
// Statement, SQL metni üretebilen her şeydir: builder'lar, ham SQL sorguları.
// Querier ise ek olarak kendini bağlı olduğu Connection üzerinden çalıştırır.
//
// Builder'lar ve SQLQuery aynı Querier arayüzünü paylaştığı için alt sorgu
// olarak (FromSub, JoinSub, In) birbirlerinin yerine kullanılabilirler.
// -----------------------------------------------------------------------------

// Statement, render edilebilir bir SQL ifadesidir.
type Statement interface {
	SQL() (string, error)
}

// Querier, bağlı olduğu Connection üzerinde çalıştırılabilen bir Statement'tır.
type Querier interface {
	Statement
	Query(ctx context.Context) (*Result, error)
	Fetch(ctx context.Context) (*FetchedResult, error)
	Execute(ctx context.Context) (int64, error)
}

// SQLQuery, elle yazılmış bir SQL metnini Querier olarak sarmalar.
//
// Örnek:
//
//	sub := conn.Raw("SELECT * FROM dual")
//	conn.Select().FromSub(sub, "d")
type SQLQuery struct {
	conn *Connection
	sql  string
}

// Raw, verilen SQL metnini bir SQLQuery olarak döndürür.
func (c *Connection) Raw(sql string) *SQLQuery {
	return &SQLQuery{conn: c, sql: sql}
}

// SQL, sarmalanan metni olduğu gibi döndürür.
func (q *SQLQuery) SQL() (string, error) {
	return q.sql, nil
}

func (q *SQLQuery) String() string {
	return q.sql
}

// Query, sorguyu ileri yönlü bir Result ile çalıştırır.
func (q *SQLQuery) Query(ctx context.Context) (*Result, error) {
	return q.conn.Query(ctx, q.sql)
}

// Fetch, tüm satırları belleğe alır.
func (q *SQLQuery) Fetch(ctx context.Context) (*FetchedResult, error) {
	return q.conn.Fetch(ctx, q.sql)
}

// Execute, sorguyu çalıştırır ve etkilenen satır sayısını döndürür.
func (q *SQLQuery) Execute(ctx context.Context) (int64, error) {
	return q.conn.Execute(ctx, q.sql)
}

// Remember, sonucu bağlantının cache'inden okur; yoksa Fetch edip saklar.
func (q *SQLQuery) Remember(ctx context.Context, ttl time.Duration) (*FetchedResult, error) {
	return q.conn.Remember(ctx, ttl, q.sql)
}
