package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/nvms/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(NewViper(), filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, "projects/", cfg.Search.URL)
	assert.Equal(t, "Admin", cfg.Nav.AdminGroup)
	assert.True(t, cfg.Nav.AdminOverride)
	assert.Equal(t, 20.0, cfg.API.RateLimit)
	assert.Equal(t, 10, cfg.API.Burst)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://nvms.example.com/api
  timeout: 5s
search:
  debounce: 150ms
nav:
  admin_override: false
auth:
  token_file: ` + filepath.Join(dir, "tokens.json") + `
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://nvms.example.com/api/", cfg.API.BaseURL, "trailing slash is added")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 150*time.Millisecond, cfg.Search.Debounce)
	assert.False(t, cfg.Nav.AdminOverride)
	assert.Equal(t, filepath.Join(dir, "tokens.json"), cfg.Auth.TokenFile)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("NVMS_API_URL", "https://env.example.com/api/")
	t.Setenv("NVMS_LOG_LEVEL", "debug")

	cfg, err := Load(NewViper(), filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/api/", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	t.Setenv("NVMS_API_URL", "ftp://nowhere")

	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Defaults()
	cfg.API.BaseURL = "https://saved.example.com/api/"
	cfg.Auth.TokenFile = filepath.Join(dir, "tokens.json")
	require.NoError(t, Save(&cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.com/api/", loaded.API.BaseURL)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Search.Debounce = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Auth.TokenFile = ""
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.API.RateLimit = -1
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.API.Burst = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.API.RateLimit = 0
	cfg.API.Burst = 0
	assert.NoError(t, cfg.Validate(), "burst is irrelevant without a rate limit")

	cfg = Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestKeysAreSorted(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "api.base_url")
	assert.Contains(t, keys, "search.debounce")
	assert.IsIncreasing(t, keys)
}

func TestSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := Set(path, "search.debounce", "500ms")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	require.NoError(t, Save(cfg, path))

	cfg, err = Set(path, "nav.admin_override", "false")
	require.NoError(t, err)
	assert.False(t, cfg.Nav.AdminOverride)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce, "earlier values are kept")
}

func TestSetRejectsUnknownKeyAndBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := Set(path, "api.nope", "x")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))

	_, err = Set(path, "api.base_url", "ftp://example.com")
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NVMS_API_URL=https://dotenv.example.com/api/\nNVMS_LOG_LEVEL=debug\n"), 0o600))

	t.Setenv("NVMS_API_URL", "")
	require.NoError(t, os.Unsetenv("NVMS_API_URL"))
	t.Setenv("NVMS_LOG_LEVEL", "warn")

	require.NoError(t, LoadEnvFile(path))

	cfg, err := Load(NewViper(), filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com/api/", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level, "the process environment wins over the file")
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	assert.NoError(t, LoadEnvFile(""))
}
