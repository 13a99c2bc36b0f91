package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: shareit
database:
  path: /tmp/test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "shareit.bookings", cfg.Events.Exchange)
	assert.Equal(t, "5s", cfg.Events.PollInterval)
	assert.Equal(t, 50, cfg.Events.BatchSize)
	assert.Equal(t, 5, cfg.Events.MaxRetries)
	assert.Equal(t, 10, cfg.Pagination.DefaultSize)
	assert.Equal(t, 100, cfg.Pagination.MaxSize)
	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, float64(10), cfg.RateLimit.RPS)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/tmp/expanded.db")

	path := writeConfig(t, `
database:
  path: ${TEST_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded.db", cfg.Database.Path)
}

func TestLoad_ValidationFailures(t *testing.T) {
	_, err := Load(writeConfig(t, `
app:
  name: shareit
`))
	assert.ErrorContains(t, err, "database path is required")

	_, err = Load(writeConfig(t, `
database:
  path: /tmp/test.db
events:
  enabled: true
`))
	assert.ErrorContains(t, err, "events.url is required")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
