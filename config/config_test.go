package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 8, cfg.RedisDB)
	assert.Equal(t, DriverRedis, cfg.StorageDriver)
	assert.Equal(t, "classroom_", cfg.KeyPrefix)
	assert.True(t, cfg.Seed)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLASSROOM_SERVER_ADDR", ":9090")
	t.Setenv("CLASSROOM_REDIS_DB", "3")
	t.Setenv("CLASSROOM_STORAGE_DRIVER", "MEMORY")
	t.Setenv("CLASSROOM_SEED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.False(t, cfg.Seed)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLASSROOM_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CLASSROOM_LOG_LEVEL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingDotEnvIsFine(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CLASSROOM_STORAGE_DRIVER", "sqlite")
	_, err := Load("")
	assert.Error(t, err)
}
