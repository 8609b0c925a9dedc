// -----------------------------------------------------------------------------
// SQL Testing Helpers
// -----------------------------------------------------------------------------
// Bu package, builder çıktılarını ve veritabanı etkileşimini test etmeyi
// kolaylaştıran helper fonksiyonlar sağlar.
//
// Özellikler:
// - Whitespace'e duyarsız SQL karşılaştırma (Minify, AssertSQL)
// - sqlmock ile aynı kurala göre eşleşen QueryMatcher
// - Hazır sqlmock ve in-memory SQLite veritabanları
// - Yayınlanan event'leri kaydeden listener
//
// Kullanım:
//
//	func TestActiveUsers(t *testing.T) {
//	    db, mock := sqltest.NewMock(t)
//	    conn := database.New(db)
//
//	    mock.ExpectQuery("SELECT * FROM `users` WHERE active = 1").
//	        WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
//
//	    sql, _ := conn.Select().From("users").Where("active = 1").SQL()
//	    sqltest.AssertSQL(t, "SELECT * FROM `users` WHERE active=1", sql)
//	}
// -----------------------------------------------------------------------------

package sqltest

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biyonik/querykit/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// SQL Comparison
// -----------------------------------------------------------------------------

var (
	whitespace = regexp.MustCompile(`\s+`)
	comma      = regexp.MustCompile(`\s*,\s*`)
	equals     = regexp.MustCompile(`\s*=\s*`)
)

// Minify, SQL'deki anlamsız whitespace'i kaldırır: whitespace dizileri tek
// boşluğa indirilir, virgül ve eşittir işaretlerinin etrafındaki boşluklar
// silinir, baştaki ve sondaki boşluklar kırpılır.
//
// Örnek:
//
//	sqltest.Minify("SELECT id,\n  name\nFROM users WHERE a = 1")
//	// SELECT id,name FROM users WHERE a=1
func Minify(query string) string {
	query = whitespace.ReplaceAllString(query, " ")
	query = comma.ReplaceAllString(query, ",")
	query = equals.ReplaceAllString(query, "=")
	return strings.TrimSpace(query)
}

// AssertSQL, iki SQL'in Minify sonrası eşit olduğunu doğrular.
func AssertSQL(t testing.TB, expected, actual string, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.Equal(t, Minify(expected), Minify(actual), msgAndArgs...)
}

// RequireSQL, AssertSQL gibidir ama eşleşmezse testi durdurur.
func RequireSQL(t testing.TB, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()
	require.Equal(t, Minify(expected), Minify(actual), msgAndArgs...)
}

// MinifiedMatcher, beklenen ve gerçek SQL'i Minify sonrası karşılaştıran
// sqlmock eşleştiricisidir.
var MinifiedMatcher sqlmock.QueryMatcher = sqlmock.QueryMatcherFunc(func(expected, actual string) error {
	if Minify(expected) != Minify(actual) {
		return fmt.Errorf("sql mismatch:\n  expected: %s\n  actual:   %s", Minify(expected), Minify(actual))
	}
	return nil
})

// -----------------------------------------------------------------------------
// Database Helpers
// -----------------------------------------------------------------------------

// NewMock, MinifiedMatcher kullanan bir sqlmock veritabanı oluşturur. Test
// sonunda karşılanmamış beklenti kalmadığı doğrulanır ve db kapatılır.
func NewMock(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(MinifiedMatcher))
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

// NewSQLite, verilen şema ifadeleriyle hazırlanmış in-memory bir SQLite
// veritabanı döndürür. Her çağrı bağımsız bir veritabanıdır.
//
// In-memory SQLite her bağlantıda ayrı bir veritabanı açtığı için havuz tek
// bağlantıyla sınırlanır.
func NewSQLite(t testing.TB, schema ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return db
}

// -----------------------------------------------------------------------------
// Event Helpers
// -----------------------------------------------------------------------------

// Recorder, dinlediği event'leri sırayla saklayan listener'dır.
//
// Kullanım:
//
//	rec := &sqltest.Recorder{}
//	dispatcher.Listen(events.Wildcard, rec)
//	...
//	rec.AssertDispatched(t, events.EventQueryExecuted)
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

// Handle, event'i kaydeder.
func (r *Recorder) Handle(event events.Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Names, kaydedilen event adlarını sırayla döndürür.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name()
	}
	return names
}

// Payloads, verilen ada sahip event'lerin sorgu payload'larını döndürür.
func (r *Recorder) Payloads(name string) []events.QueryPayload {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []events.QueryPayload
	for _, e := range r.events {
		if p, ok := e.Payload().(events.QueryPayload); ok && e.Name() == name {
			out = append(out, p)
		}
	}
	return out
}

// AssertDispatched, verilen ada sahip en az bir event kaydedildiğini doğrular.
func (r *Recorder) AssertDispatched(t testing.TB, name string) bool {
	t.Helper()
	return assert.Contains(t, r.Names(), name)
}
