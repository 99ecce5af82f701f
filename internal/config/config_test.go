package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8083", cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "chat.audit", cfg.AMQPExchange)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)

	sc := cfg.StoreConfig()
	assert.Equal(t, "db.internal", sc.Host)
	assert.Equal(t, "secret", sc.Password)
	assert.Equal(t, "chat_server", sc.Database)
}
