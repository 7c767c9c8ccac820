package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db.interno", Port: 5433, User: "ledger", Password: "p@ss:word",
		DBName: "stock_ledger", SSLMode: "disable", MaxConns: 8,
	}
	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "db.interno", pc.ConnConfig.Host, "el host no se reemplaza por una IP")
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss:word", pc.ConnConfig.Password)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, "stock-ledger", pc.ConnConfig.RuntimeParams["application_name"])
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_DatabaseURL(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		DatabaseURL: "postgres://u:p@10.0.0.5:5432/otra?sslmode=disable&application_name=reportes",
		Host:        "ignorado",
	})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", pc.ConnConfig.Host)
	assert.Equal(t, "otra", pc.ConnConfig.Database)
	assert.Equal(t, int32(25), pc.MaxConns, "sin DB_MAX_CONNS usa el valor por defecto")
	assert.Equal(t, "reportes", pc.ConnConfig.RuntimeParams["application_name"])
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@host:notaport/db"})
	assert.Error(t, err)
}
