package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("PERSISTENCE_TIMEOUT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 5*time.Second, cfg.PersistenceTimeout)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("PERSISTENCE_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://erp.example.com, ,https://admin.example.com")
	t.Setenv("CORRECTION_RATE_LIMIT", "5-M")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.PersistenceTimeout)
	assert.Equal(t, []string{"https://erp.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "5-M", cfg.CorrectionRateLimit)
}

func TestLoadConfig_UnknownDriverFallsBack(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("PERSISTENCE_TIMEOUT", "-3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 5*time.Second, cfg.PersistenceTimeout)
}
