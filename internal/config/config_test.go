package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/gymtracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_RepoConfig(t *testing.T) {
	cfg, err := config.Load("dev", "../../config.toml")
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, config.BackendMemory, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)

	cfg, err = config.Load("production", "../../config.toml")
	require.NoError(t, err)
	assert.Equal(t, config.BackendFirestore, cfg.Backend)
	assert.Equal(t, "gymtracker-prod", cfg.FirestoreProjectID)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeFile(t, "config.toml", `
[development]
log_level = "info"
`)
	cfg, err := config.Load("development", path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Backend)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, "6379", cfg.RedisPort)
	assert.Equal(t, 8, cfg.AICacheSizeMB)
	assert.Equal(t, 5, cfg.AIRequestsPerMinute)
	assert.NotEmpty(t, cfg.AIModel)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load("dev", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := writeFile(t, "config.toml", `
[development]
backend = "firestore"
`)
	_, err = config.Load("staging", path)
	assert.EqualError(t, err, "unknown env: staging")

	_, err = config.Load("prod", path)
	assert.Error(t, err)

	_, err = config.Load("dev", path)
	assert.EqualError(t, err, "firestore backend needs firestore_project_id")

	path = writeFile(t, "config.toml", `
[development]
backend = "sqlite"
`)
	_, err = config.Load("dev", path)
	assert.EqualError(t, err, "unknown backend: sqlite")
}

func TestLoadSecrets(t *testing.T) {
	envFile := writeFile(t, ".env", "GEMINI_API_KEY=from-file\nGYMTRACKER_REDIS_PASS=file-pass\n")
	t.Setenv("GYMTRACKER_REDIS_PASS", "env-pass")
	t.Setenv("HONEYCOMB_ENABLED", "true")
	t.Setenv("GEMINI_API_KEY", "")
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	secrets, err := config.LoadSecrets(envFile)
	require.NoError(t, err)
	assert.Equal(t, "env-pass", secrets.RedisPassword)
	assert.Equal(t, "from-file", secrets.GeminiAPIKey)
	assert.True(t, secrets.HoneycombEnabled)

	_, err = config.LoadSecrets(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}
