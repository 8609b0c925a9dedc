package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "querykit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "none", cfg.Cache.Driver)
	assert.Equal(t, "querykit:", cfg.Cache.Prefix)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.False(t, cfg.Query.StrictMerge)
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	path := writeYAML(t, `
database:
  dsn: "app:secret@tcp(db:3306)/shop"
  max_open_conns: 10
  conn_max_lifetime: 90s
cache:
  driver: memory
  ttl: 1m
query:
  strict_merge: true
  rate_limit: 50
`)
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("CACHE_TTL", "30")
	t.Setenv("REDIS_HOST", "cache.internal")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "app:secret@tcp(db:3306)/shop", cfg.Database.DSN)
	assert.Equal(t, 40, cfg.Database.MaxOpenConns, "env kazanır")
	assert.Equal(t, 90*time.Second, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "cache.internal", cfg.Redis.Host)
	assert.True(t, cfg.Query.StrictMerge)
	assert.Equal(t, 50.0, cfg.Query.RateLimit)
}

func TestLoad_InvalidEnvIgnored(t *testing.T) {
	t.Setenv("DB_MAX_IDLE_CONNS", "many")
	t.Setenv("QUERY_DEBUG", "yes please")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Database.MaxIdleConns)
	assert.False(t, cfg.Query.Debug)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeYAML(t, "database: [unclosed"))
	assert.Error(t, err)

	t.Setenv("CACHE_DRIVER", "memcached")
	_, err = Load()
	assert.ErrorContains(t, err, "CACHE_DRIVER")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Database.DSN = "not a dsn"
	cfg.Query.RateLimit = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
	assert.Contains(t, err.Error(), "QUERY_RATE_LIMIT")
}

func TestFormatDSN(t *testing.T) {
	db := DatabaseConfig{User: "app", Password: "pw", Host: "db", Port: 3306, Name: "shop"}
	dsn := db.FormatDSN()
	assert.Contains(t, dsn, "app:pw@tcp(db:3306)/shop")
	assert.Contains(t, dsn, "parseTime=true")

	db.DSN = "root@/other"
	assert.Equal(t, "root@/other", db.FormatDSN())
}

func TestLoadFile_QueryLog(t *testing.T) {
	path := writeYAML(t, `
query:
  log_events: true
  slow_threshold: 250ms
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Query.LogEvents)
	assert.Equal(t, 250*time.Millisecond, cfg.Query.SlowThreshold)

	t.Setenv("QUERY_SLOW_THRESHOLD_MS", "1500")
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Query.SlowThreshold)

	cfg.Query.SlowThreshold = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "QUERY_SLOW_THRESHOLD_MS")
}
