package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv deja vacías las variables que lee Load; Viper trata el valor vacío como no definido.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "APP_NAME", "LOG_LEVEL", "COMPANY_NAME", "PDF_LOCALE",
		"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_STATEMENT_TIMEOUT_MS",
		"JWT_SECRET", "JWT_EXPIRATION_MINUTES", "REDIS_ADDR", "PRODUCT_CACHE_TTL_SECONDS",
		"RESOLVER_TIMEOUT_MS", "SESSION_TTL_MINUTES", "SESSION_SWEEP_SECONDS", "HTTP_PORT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "es", cfg.App.Locale)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ProductTTL)
	assert.Equal(t, 3*time.Second, cfg.Engine.ResolverTimeout)
	assert.Equal(t, 4*time.Hour, cfg.Engine.SessionTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RESOLVER_TIMEOUT_MS", "750")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_MAX_CONNS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.ResolverTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int32(5), cfg.DB.MaxConns)
}

func TestLoad_ProduccionSinSecreto(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "fs", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/fs?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgresql://x@y/z"
	assert.Equal(t, "postgresql://x@y/z", c.ConnectionString())
}
