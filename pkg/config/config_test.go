package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, []int{30, 60, 90, 180}, cfg.Reports.AgingBuckets)
	assert.Equal(t, int64(10), cfg.Reports.DefaultMinStock)
	assert.Equal(t, int64(100), cfg.Reports.DefaultMaxStock)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DB_STATEMENT_TIMEOUT", "30")
	t.Setenv("REDIS_CACHE_TTL", "90s")
	t.Setenv("REPORTS_AGING_BUCKETS", "15, 45")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, []int{15, 45}, cfg.Reports.AgingBuckets)
	assert.False(t, cfg.DB.AutoMigrate)
}

func TestLoad_BucketsInvalidos(t *testing.T) {
	t.Setenv("REPORTS_AGING_BUCKETS", "30,abc")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/ledger?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
