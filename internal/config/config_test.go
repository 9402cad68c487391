package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
storage:
  driver: memory
dedup:
  default_fields: [orderId, total]
  fields:
    ORDER_PLACED: [orderId]
    password_reset: [token]
sweeper:
  batch_size: 25
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfig), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, []string{"orderId", "total"}, cfg.Dedup.DefaultFields)
	assert.Equal(t, map[string][]string{
		"ORDER_PLACED":   {"orderId"},
		"PASSWORD_RESET": {"token"},
	}, cfg.Dedup.Fields)

	assert.Equal(t, 25, cfg.Sweeper.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, 5, cfg.Dispatch.MaxRetries)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 10, cfg.Sweeper.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.SendTimeout)
	assert.Empty(t, cfg.Dedup.Fields)
}
