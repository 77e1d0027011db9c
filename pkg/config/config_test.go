package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.False(t, cfg.JWT.Enabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CATALOG_TIMEOUT", "750ms")
	t.Setenv("HTTP_WRITE_TIMEOUT", "30")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 750*time.Millisecond, cfg.Catalog.Timeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 7, cfg.DB.MaxConns)
	assert.True(t, cfg.JWT.Enabled())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("CATALOG_TIMEOUT", "pronto")
	_, err := Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "taller", Password: "p@ss:word", DBName: "taller", SSLMode: "disable"}
	assert.Equal(t, "postgres://taller:p%40ss%3Aword@db:5432/taller?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
