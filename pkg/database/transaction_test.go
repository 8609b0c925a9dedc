package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_Locks(t *testing.T) {
	tx := NewTransaction(New(nil))
	assert.Equal(t, "", tx.Locks())

	tx.WithLock("write", "users", "groups").WithReadLock("teams AS t")
	assert.Equal(t, "users WRITE,groups WRITE,teams AS t READ", tx.Locks())
}

func TestTransaction_LockState(t *testing.T) {
	conn, mock := newMockConnection(t)
	ctx := context.Background()

	none := NewTransaction(conn)
	assert.NoError(t, none.Lock(ctx), "kilit tanımlı değilse no-op")
	assert.NoError(t, none.Unlock(ctx))

	tx := NewTransaction(conn).WithWriteLock("users")
	assert.ErrorIs(t, tx.Unlock(ctx), ErrNotLocked)

	mock.ExpectExec("LOCK TABLES users WRITE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UNLOCK TABLES").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, tx.Lock(ctx))
	assert.ErrorIs(t, tx.Lock(ctx), ErrAlreadyLocked)
	require.NoError(t, tx.Unlock(ctx))
	assert.ErrorIs(t, tx.Unlock(ctx), ErrNotLocked)
}

func TestTransaction_Run(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLES orders WRITE,products READ").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `orders` (`product_id`) VALUES ('7')").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UNLOCK TABLES").WillReturnResult(sqlmock.NewResult(0, 0))

	tx := NewTransaction(conn).WithWriteLock("orders").WithReadLock("products")
	err := tx.Run(context.Background(), func(ctx context.Context, pinned *Connection) error {
		assert.NotSame(t, conn, pinned)
		assert.True(t, pinned.InTransaction())
		_, err := pinned.InsertValues(ctx, "orders", Fields{F("product_id", Int(7))})
		return err
	})
	require.NoError(t, err)
	assert.False(t, conn.InTransaction())
}

func TestTransaction_RunRollsBackAndUnlocks(t *testing.T) {
	conn, mock := newMockConnection(t)
	outOfStock := errors.New("out of stock")

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLES stock WRITE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	mock.ExpectExec("UNLOCK TABLES").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewTransaction(conn).WithWriteLock("stock").Run(context.Background(),
		func(context.Context, *Connection) error { return outOfStock })
	assert.ErrorIs(t, err, outOfStock)
}

func TestTransaction_RunLockFailure(t *testing.T) {
	conn, mock := newMockConnection(t)
	denied := errors.New("access denied")

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLES stock WRITE").WillReturnError(denied)
	mock.ExpectRollback()

	called := false
	err := NewTransaction(conn).WithWriteLock("stock").Run(context.Background(),
		func(context.Context, *Connection) error { called = true; return nil })
	assert.ErrorIs(t, err, denied)
	assert.False(t, called)
}

func TestTransaction_RunPanics(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLES stock WRITE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	mock.ExpectExec("UNLOCK TABLES").WillReturnResult(sqlmock.NewResult(0, 0))

	tx := NewTransaction(conn).WithWriteLock("stock")
	assert.PanicsWithValue(t, "boom", func() {
		tx.Run(context.Background(), func(context.Context, *Connection) error { panic("boom") })
	})
}

func TestTransaction_RunWithoutLocks(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `carts` WHERE `expired`='1'").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	err := NewTransaction(conn).Run(context.Background(), func(ctx context.Context, pinned *Connection) error {
		n, err := pinned.DeleteWhere(ctx, "carts", Criteria{C("expired", Bool(true))})
		assert.Equal(t, int64(5), n)
		return err
	})
	require.NoError(t, err)
}

func TestTransaction_RunUnlockFailureAfterCommit(t *testing.T) {
	logger := &memLogger{}
	conn, mock := newMockConnection(t, WithLogger(logger))
	gone := errors.New("server has gone away")

	mock.ExpectBegin()
	mock.ExpectExec("LOCK TABLES stock WRITE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("UNLOCK TABLES").WillReturnError(gone)

	err := NewTransaction(conn).WithWriteLock("stock").Run(context.Background(),
		func(context.Context, *Connection) error { return nil })
	assert.ErrorIs(t, err, gone)
	require.NoError(t, mock.ExpectationsWereMet())

	logs := logger.String()
	assert.Equal(t, 1, strings.Count(logs, "UNLOCK TABLES"), "unlock tek kez denenir")
	assert.NotContains(t, logs, "Unlock hatası")
	assert.NotContains(t, logs, "Rollback hatası")
}
