// internal/common/config/loader.go
package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// legacyEnv maps config keys onto the flat environment names used by .env files.
var legacyEnv = map[string]string{
	"formbricks.url":        "FORMBRICKS_URL",
	"formbricks.api_key":    "FORMBRICKS_API_KEY",
	"ollama.url":            "OLLAMA_URL",
	"ollama.model":          "OLLAMA_MODEL",
	"logging.level":         "LOG_LEVEL",
	"http.max_retries":      "MAX_RETRIES",
	"http.request_timeout":  "REQUEST_TIMEOUT",
	"compose.file":          "COMPOSE_FILE",
	"cache.redis.address":   "REDIS_ADDRESS",
	"app.environment":       "APP_ENVIRONMENT",
	"metrics.textfile_path": "METRICS_FILE",
}

// Load builds the configuration from, in increasing priority: defaults, the
// yaml file (explicit path or ./configs/config.yaml), and environment
// variables, including those read from a discovered .env file.
func Load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading base config: %w", err)
			}
		}

		env := v.GetString("app.environment")
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = v.MergeInConfig() // ignore error if not found
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "formbricks-seeder")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("formbricks.url", "http://localhost:3000")
	v.SetDefault("formbricks.api_key", "")
	v.SetDefault("formbricks.health_path", "/api/health")

	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama2")
	v.SetDefault("ollama.temperature", 0.7)
	v.SetDefault("ollama.num_predict", 2000)
	v.SetDefault("ollama.timeout", 120)

	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.request_timeout", 30)

	v.SetDefault("generation.num_surveys", 5)
	v.SetDefault("generation.num_users", 10)
	v.SetDefault("generation.output_dir", "./data")
	v.SetDefault("generation.pacing", 1000)
	v.SetDefault("generation.seed", 0)

	v.SetDefault("seeding.data_dir", "./data")
	v.SetDefault("seeding.survey_pacing", 1000)
	v.SetDefault("seeding.user_pacing", 500)
	v.SetDefault("seeding.response_pacing", 300)

	v.SetDefault("compose.file", "docker-compose.yml")
	v.SetDefault("compose.project_dir", ".")
	v.SetDefault("compose.service_name", "formbricks")
	v.SetDefault("compose.startup_timeout", 180)
	v.SetDefault("compose.poll_interval", 5)

	v.SetDefault("cache.redis.address", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.ttl", 86400)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.textfile_path", "")
}

// loadEnvFile loads the first .env found in the working directory, its
// parents, or the module root. It returns the path it loaded, or "".
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			// godotenv.Load never overrides variables already set in the process.
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in yaml values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults repairs zero values that survived unmarshalling, e.g. an
// explicit `0` in yaml or an empty environment variable.
func applyDefaults(cfg *Config) {
	cfg.Formbricks.URL = strings.TrimRight(cfg.Formbricks.URL, "/")
	cfg.Ollama.URL = strings.TrimRight(cfg.Ollama.URL, "/")

	if cfg.Formbricks.HealthPath == "" {
		cfg.Formbricks.HealthPath = "/api/health"
	}
	if cfg.HTTP.MaxRetries <= 0 {
		cfg.HTTP.MaxRetries = 3
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30
	}
	if cfg.Ollama.NumPredict <= 0 {
		cfg.Ollama.NumPredict = 2000
	}
	if cfg.Ollama.Timeout <= 0 {
		cfg.Ollama.Timeout = 120
	}
	if cfg.Compose.StartupTimeout <= 0 {
		cfg.Compose.StartupTimeout = 180
	}
	if cfg.Compose.PollInterval <= 0 {
		cfg.Compose.PollInterval = 5
	}
	if cfg.Compose.ServiceName == "" {
		cfg.Compose.ServiceName = "formbricks"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 86400
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if err := validateURL("formbricks.url", cfg.Formbricks.URL); err != nil {
		return err
	}
	if err := validateURL("ollama.url", cfg.Ollama.URL); err != nil {
		return err
	}
	if cfg.Ollama.Model == "" {
		return fmt.Errorf("ollama.model is required")
	}
	if cfg.Ollama.Temperature < 0 || cfg.Ollama.Temperature > 2 {
		return fmt.Errorf("ollama.temperature must be between 0 and 2, got %v", cfg.Ollama.Temperature)
	}
	if cfg.Generation.NumSurveys < 0 || cfg.Generation.NumUsers < 0 {
		return fmt.Errorf("generation counts must not be negative")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", cfg.Logging.Level)
	}
	return nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return nil
}

// Warnings lists non-fatal problems for the `config` command. probe checks
// that the text-generation service answers.
func (c *Config) Warnings(ctx context.Context, probe func(ctx context.Context) error) []string {
	var warnings []string
	if probe != nil {
		if err := probe(ctx); err != nil {
			warnings = append(warnings, fmt.Sprintf("Ollama not running at %s", c.Ollama.URL))
		}
	}
	if c.Formbricks.APIKey == "" {
		warnings = append(warnings, "FORMBRICKS_API_KEY not set (will be needed for seeding)")
	}
	return warnings
}
