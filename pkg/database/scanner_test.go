package database

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biyonik/querykit/pkg/sqltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Timestamps struct {
	CreatedAt time.Time `db:"created_at"`
}

type account struct {
	Timestamps
	ID      int64
	Email   string `db:"email"`
	Balance sql.NullFloat64
	note    string
}

func queryAccounts(t *testing.T, columns []string, rows ...[]any) *sql.Rows {
	t.Helper()
	db, mock := sqltest.NewMock(t)

	mockRows := sqlmock.NewRows(columns)
	for _, row := range rows {
		values := make([]driver.Value, len(row))
		for i, v := range row {
			values[i] = v
		}
		mockRows.AddRow(values...)
	}
	mock.ExpectQuery("SELECT accounts").WillReturnRows(mockRows)

	result, err := db.Query("SELECT accounts")
	require.NoError(t, err)
	t.Cleanup(func() { result.Close() })
	return result
}

func TestScanner_Mapping(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := queryAccounts(t,
		[]string{"id", "email", "balance", "created_at", "ignored"},
		[]any{int64(1), "a@example.com", 12.5, created, "x"})

	require.True(t, rows.Next())
	var got account
	require.NoError(t, ScanStruct(rows, &got))

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, sql.NullFloat64{Float64: 12.5, Valid: true}, got.Balance)
	assert.Equal(t, created, got.CreatedAt)
	assert.Empty(t, got.note)
}

func TestScanner_Slice(t *testing.T) {
	rows := queryAccounts(t, []string{"id", "email"},
		[]any{int64(1), "a@example.com"},
		[]any{int64(2), "b@example.com"})

	var accounts []*account
	require.NoError(t, ScanSlice(rows, &accounts))
	require.Len(t, accounts, 2)
	assert.Equal(t, "b@example.com", accounts[1].Email)
}

func TestScanner_InvalidDestination(t *testing.T) {
	rows := queryAccounts(t, []string{"id"}, []any{int64(1)})
	require.True(t, rows.Next())

	var notStruct int
	assert.ErrorContains(t, ScanStruct(rows, &notStruct), "struct pointer")
	assert.ErrorContains(t, ScanStruct(rows, account{}), "struct pointer")
	assert.ErrorContains(t, ScanSlice(rows, []account{}), "slice pointer")
}

func TestScanner_CachesFieldMap(t *testing.T) {
	s := NewScanner()
	first := s.fields(reflect.TypeOf(account{}))
	second := s.fields(reflect.TypeOf(account{}))

	assert.Equal(t, []int{0, 0}, first["created_at"])
	assert.Equal(t, []int{1}, first["id"])
	assert.Equal(t, []int{3}, first["balance"])
	assert.NotContains(t, first, "note")
	assert.Len(t, s.cache, 1)
	assert.Equal(t, first, second)
}
