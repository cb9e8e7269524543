package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbench/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DATABASE_URL", "PORT", "DEFAULT_ALPHA", "GUARDIAN_URL", "GUARDIAN_TIMEOUT", "MAX_UPLOAD_MB", "PPROF_ENABLED"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 0.05, cfg.Engine.DefaultAlpha)
	assert.Equal(t, 20, cfg.Engine.MaxCategories)
	assert.Equal(t, 5*time.Second, cfg.Guardian.Timeout)
	assert.Empty(t, cfg.Guardian.URL)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/statbench")
	t.Setenv("DEFAULT_ALPHA", "0.01")
	t.Setenv("GUARDIAN_TIMEOUT", "250ms")
	t.Setenv("DEFAULT_ITERATIONS", "not-a-number")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 0.01, cfg.Engine.DefaultAlpha)
	assert.Equal(t, 250*time.Millisecond, cfg.Guardian.Timeout)
	assert.Equal(t, 1000, cfg.Engine.DefaultIterations)
	assert.True(t, cfg.Profiling.Enabled)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"DB_DRIVER":         "mysql",
		"DEFAULT_ALPHA":     "1.5",
		"DEFAULT_TEST_SIZE": "0",
		"MAX_CATEGORIES":    "1",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
