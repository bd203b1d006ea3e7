package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trackedEnv = []string{
	"FORMBRICKS_URL", "FORMBRICKS_API_KEY", "OLLAMA_URL", "OLLAMA_MODEL",
	"LOG_LEVEL", "MAX_RETRIES", "REQUEST_TIMEOUT", "COMPOSE_FILE",
	"REDIS_ADDRESS", "APP_ENVIRONMENT", "METRICS_FILE",
}

// isolate runs the test from an empty directory with a clean environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range trackedEnv {
		t.Setenv(k, "")
	}
	return dir
}

// ==========================
// Load
// ==========================

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Formbricks.URL)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.URL)
	assert.Equal(t, "llama2", cfg.Ollama.Model)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 30, cfg.HTTP.RequestTimeout)
	assert.Equal(t, 180, cfg.Compose.StartupTimeout)
	assert.Equal(t, "/api/health", cfg.Formbricks.HealthPath)
	assert.Equal(t, 5, cfg.Generation.NumSurveys)
	assert.Equal(t, 10, cfg.Generation.NumUsers)
	assert.False(t, cfg.Cache.Enabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("FORMBRICKS_URL", "http://formbricks.local:3000/")
	t.Setenv("FORMBRICKS_API_KEY", "fbk_secret_1234")
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://formbricks.local:3000", cfg.Formbricks.URL, "trailing slash trimmed")
	assert.Equal(t, "fbk_secret_1234", cfg.Formbricks.APIKey)
	assert.Equal(t, "mistral", cfg.Ollama.Model)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.True(t, cfg.Cache.Enabled())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Unsetenv("OLLAMA_MODEL"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OLLAMA_MODEL=codellama\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("OLLAMA_MODEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "codellama", cfg.Ollama.Model)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("SEEDER_TEST_KEY", "from-placeholder")
	path := filepath.Join(dir, "seeder.yaml")
	yaml := `
formbricks:
  url: http://example.test:3000
  api_key: ${SEEDER_TEST_KEY}
generation:
  num_surveys: 9
seeding:
  response_pacing: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:3000", cfg.Formbricks.URL)
	assert.Equal(t, "from-placeholder", cfg.Formbricks.APIKey)
	assert.Equal(t, 9, cfg.Generation.NumSurveys)
	assert.Equal(t, 0, cfg.Seeding.ResponsePacing)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

// ==========================
// Validation
// ==========================

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		c := &Config{
			Formbricks: FormbricksConfig{URL: "http://localhost:3000"},
			Ollama:     OllamaConfig{URL: "http://localhost:11434", Model: "llama2", Temperature: 0.7},
		}
		applyDefaults(c)
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "relative formbricks url", mutate: func(c *Config) { c.Formbricks.URL = "localhost:3000" }, wantErr: "formbricks.url"},
		{name: "empty ollama url", mutate: func(c *Config) { c.Ollama.URL = "" }, wantErr: "ollama.url is required"},
		{name: "empty model", mutate: func(c *Config) { c.Ollama.Model = "" }, wantErr: "ollama.model"},
		{name: "temperature out of range", mutate: func(c *Config) { c.Ollama.Temperature = 3 }, wantErr: "temperature"},
		{name: "negative users", mutate: func(c *Config) { c.Generation.NumUsers = -1 }, wantErr: "negative"},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// Display & Warnings
// ==========================

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***1234", MaskSecret("fbk_abcdef1234"))
	assert.Equal(t, "***ab", MaskSecret("ab"))
}

func TestDisplay_MasksAPIKey(t *testing.T) {
	cfg := &Config{Formbricks: FormbricksConfig{APIKey: "fbk_abcdef9876"}}

	for _, row := range cfg.Display() {
		if row.Key == "FORMBRICKS_API_KEY" {
			assert.Equal(t, "***9876", row.Value)
			return
		}
	}
	t.Fatal("FORMBRICKS_API_KEY row missing")
}

func TestWarnings(t *testing.T) {
	cfg := &Config{Ollama: OllamaConfig{URL: "http://localhost:11434"}}

	warnings := cfg.Warnings(context.Background(), func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "Ollama not running at http://localhost:11434")
	assert.Contains(t, warnings[1], "FORMBRICKS_API_KEY not set")

	cfg.Formbricks.APIKey = "key"
	assert.Empty(t, cfg.Warnings(context.Background(), func(ctx context.Context) error { return nil }))
}
