package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: econ-site
server:
  port: 8080
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 3, cfg.Feed.RetryAttempts)
	assert.Equal(t, 3*time.Second, cfg.Feed.RetryDelay)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.File.Dir)
	assert.Equal(t, "0 9 * * *", cfg.Reminder.Schedule)
	assert.Equal(t, 1, cfg.Reminder.Workers)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
feed:
  base_url: "https://example.com/sheet?output=csv"
storage:
  backend: redis
  redis:
    host: localhost
    port: 6379
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("FEED_BASE_URL", "https://example.com/other?output=csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Storage.Redis.Password)
	assert.Equal(t, "https://example.com/other?output=csv", cfg.Feed.BaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
