package database

import (
	"context"
	"database/sql"
)

/*
*
// Executor, database/sql paketindeki *sql.DB (havuz), *sql.Conn (tek
// bağlantı) ve *sql.Tx (transaction) tarafından örtük olarak uygulanan
// metodları tanımlar.
//
// Connection, ifadeleri her zaman bu arayüz üzerinden çalıştırır. Bu sayede
// aynı Connection açık bir transaction varken *sql.Tx'e, yokken havuza
// yönlenebilir.
*/
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Beginner, transaction başlatabilen bir Executor'dır (*sql.DB veya *sql.Conn).
type Beginner interface {
	Executor
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
