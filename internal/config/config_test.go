package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_DRIVER", "DB_DSN", "DB_MAX_OPEN_CONNS", "RESET_DB", "REQUIRE_AUTH"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Contains(t, cfg.DBDSN, "library_schema")
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.False(t, cfg.ResetDB)
	assert.False(t, cfg.RequireAuth)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "library.db", cfg.DBDSN)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, 3, cfg.RedisDB)
}
