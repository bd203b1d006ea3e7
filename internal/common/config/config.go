// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Formbricks FormbricksConfig `mapstructure:"formbricks"`
	Ollama     OllamaConfig     `mapstructure:"ollama"`
	Generation GenerationConfig `mapstructure:"generation"`
	Seeding    SeedingConfig    `mapstructure:"seeding"`
	Compose    ComposeConfig    `mapstructure:"compose"`
	Cache      CacheConfig      `mapstructure:"cache"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// --- External Services ---

type FormbricksConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	HealthPath string `mapstructure:"health_path"`
}

type OllamaConfig struct {
	URL         string  `mapstructure:"url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	NumPredict  int     `mapstructure:"num_predict"`
	Timeout     int     `mapstructure:"timeout"` // seconds
}

// HTTPConfig holds the settings shared by every outbound client.
type HTTPConfig struct {
	MaxRetries     int `mapstructure:"max_retries"`
	RequestTimeout int `mapstructure:"request_timeout"` // seconds
}

// --- Pipeline Config ---

type GenerationConfig struct {
	NumSurveys int    `mapstructure:"num_surveys"`
	NumUsers   int    `mapstructure:"num_users"`
	OutputDir  string `mapstructure:"output_dir"`
	Pacing     int    `mapstructure:"pacing"` // milliseconds between LLM calls
	Seed       int64  `mapstructure:"seed"`
}

type SeedingConfig struct {
	DataDir        string `mapstructure:"data_dir"`
	SurveyPacing   int    `mapstructure:"survey_pacing"`   // milliseconds
	UserPacing     int    `mapstructure:"user_pacing"`     // milliseconds
	ResponsePacing int    `mapstructure:"response_pacing"` // milliseconds
}

type ComposeConfig struct {
	File           string `mapstructure:"file"`
	ProjectDir     string `mapstructure:"project_dir"`
	ServiceName    string `mapstructure:"service_name"`
	StartupTimeout int    `mapstructure:"startup_timeout"` // seconds
	PollInterval   int    `mapstructure:"poll_interval"`   // seconds
}

// --- Infrastructure ---

type CacheConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
	TTL   int         `mapstructure:"ttl"` // seconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether an LLM cache should be used.
func (c CacheConfig) Enabled() bool {
	return c.Redis.Address != ""
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// GetDuration converts seconds from config to time.Duration.
func GetDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// GetMillis converts milliseconds from config to time.Duration.
func GetMillis(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// MaskSecret keeps only the last four characters of a secret.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return "***" + secret
	}
	return "***" + secret[len(secret)-4:]
}

// DisplayRow is one line of the `config` command table.
type DisplayRow struct {
	Key   string
	Value string
}

// Display returns the effective settings with secrets masked.
func (c *Config) Display() []DisplayRow {
	apiKey := ""
	if c.Formbricks.APIKey != "" {
		apiKey = MaskSecret(c.Formbricks.APIKey)
	}
	redis := c.Cache.Redis.Address
	if redis == "" {
		redis = "(disabled)"
	}
	return []DisplayRow{
		{Key: "FORMBRICKS_URL", Value: c.Formbricks.URL},
		{Key: "FORMBRICKS_API_KEY", Value: apiKey},
		{Key: "OLLAMA_URL", Value: c.Ollama.URL},
		{Key: "OLLAMA_MODEL", Value: c.Ollama.Model},
		{Key: "LOG_LEVEL", Value: c.Logging.Level},
		{Key: "MAX_RETRIES", Value: fmt.Sprintf("%d", c.HTTP.MaxRetries)},
		{Key: "REQUEST_TIMEOUT", Value: fmt.Sprintf("%d", c.HTTP.RequestTimeout)},
		{Key: "COMPOSE_FILE", Value: c.Compose.File},
		{Key: "REDIS_ADDRESS", Value: redis},
	}
}
