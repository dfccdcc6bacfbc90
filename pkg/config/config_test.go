package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("antifraud-test")
	require.NoError(t, err)

	assert.Equal(t, "antifraud-test", cfg.Server.ServiceName)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 2*time.Second, cfg.Antifraud.ProbeTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Antifraud.CleanupInterval)
	assert.Equal(t, time.Minute, cfg.Antifraud.BlacklistCacheTTL)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("ANTIFRAUD_PROBE_TIMEOUT", "500ms")

	cfg, err := Load("antifraud-test")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 50, cfg.Database.MaxConns)
	assert.Equal(t, 500*time.Millisecond, cfg.Antifraud.ProbeTimeout)
}

func TestDSNAndRedisAddr(t *testing.T) {
	cfg := &DatabaseConfig{
		Host: "localhost", Port: "5432", User: "postgres",
		Password: "postgres", DBName: "hubdefisats", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=hubdefisats sslmode=disable",
		cfg.DSN(),
	)

	redis := &RedisConfig{Host: "localhost", Port: "6379"}
	assert.Equal(t, "localhost:6379", redis.RedisAddr())
}
