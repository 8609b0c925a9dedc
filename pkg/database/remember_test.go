package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/biyonik/querykit/pkg/cache"
	"github.com/biyonik/querykit/pkg/events"
	"github.com/biyonik/querykit/pkg/sqltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *cache.MemoryCache {
	t.Helper()
	store := cache.NewMemoryCache(&memLogger{})
	t.Cleanup(store.Stop)
	return store
}

func TestRemember_SecondCallIsServedFromCache(t *testing.T) {
	store := newMemoryStore(t)
	dispatcher := events.NewDispatcher(&memLogger{})
	t.Cleanup(dispatcher.Shutdown)
	rec := &sqltest.Recorder{}
	dispatcher.Subscribe([]string{events.EventCacheHit, events.EventCacheMiss}, rec)

	conn, mock := newMockConnection(t, WithCache(store, "test:"), WithDispatcher(dispatcher))
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name, score, note FROM countries").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "score", "note"}).
			AddRow(int64(1), "Türkiye", 9.5, nil).
			AddRow(int64(300), "Norway", 7.25, []byte("cold")))

	query := conn.Raw("SELECT id, name, score, note FROM countries")
	first, err := query.Remember(ctx, time.Minute)
	require.NoError(t, err)
	second, err := query.Remember(ctx, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, first.Columns(), second.Columns())
	assert.Equal(t, first.Rows(), second.Rows(), "cache'den okunan hücreler driver tipleriyle aynı")
	assert.Equal(t, []Row{
		{"id": int64(1), "name": "Türkiye", "score": 9.5, "note": nil},
		{"id": int64(300), "name": "Norway", "score": 7.25, "note": "cold"},
	}, second.Rows())

	assert.Equal(t, []string{events.EventCacheMiss, events.EventCacheHit}, rec.Names())
	assert.Equal(t, 1, store.Size())
}

func TestRemember_BuilderAndForget(t *testing.T) {
	store := newMemoryStore(t)
	conn, mock := newMockConnection(t, WithCache(store, ""))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT * FROM `users` WHERE `active`='1'").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	}

	active := conn.Select().From("users").WhereMap(Criteria{C("active", Bool(true))})
	_, err := active.Remember(ctx, time.Minute)
	require.NoError(t, err)
	_, err = active.Remember(ctx, time.Minute)
	require.NoError(t, err)

	require.NoError(t, conn.Forget(ctx, active.String()))
	res, err := active.Remember(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count())
}

func TestRemember_WithoutCacheFetches(t *testing.T) {
	conn, mock := newMockConnection(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	}

	for i := 0; i < 2; i++ {
		res, err := conn.Remember(ctx, time.Minute, "SELECT 1")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Count())
	}
	assert.NoError(t, conn.Forget(ctx, "SELECT 1"))
}

// failingCache, her okumada hata döner.
type failingCache struct {
	cache.Cache
	sets int
}

func (f *failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (f *failingCache) Set(context.Context, string, []byte, time.Duration) error {
	f.sets++
	return errors.New("cache down")
}

func TestRemember_CacheErrorsDoNotFailQuery(t *testing.T) {
	store := &failingCache{}
	logger := &memLogger{}
	conn, mock := newMockConnection(t, WithLogger(logger), WithCache(store, ""))

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	res, err := conn.Remember(context.Background(), time.Minute, "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count())
	assert.Equal(t, 1, store.sets)
	assert.Contains(t, logger.String(), "cache down")
}

func TestRemember_CorruptEntryIsRefetched(t *testing.T) {
	store := newMemoryStore(t)
	conn, mock := newMockConnection(t, WithCache(store, "q:"))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, conn.cacheKey("SELECT 1"), []byte{0xc1}, time.Minute))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	res, err := conn.Remember(ctx, time.Minute, "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, res.Values())
}

func TestCacheKey(t *testing.T) {
	conn := New(nil, WithCache(nil, "app:"))

	a := conn.cacheKey("SELECT 1")
	assert.Equal(t, a, conn.cacheKey("SELECT 1"))
	assert.NotEqual(t, a, conn.cacheKey("SELECT 2"))
	assert.Regexp(t, `^app:[0-9a-f]+$`, a)
}
