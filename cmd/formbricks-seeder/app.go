package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"formbricks-seeder/internal/common/config"
	"formbricks-seeder/internal/common/logger"
	"formbricks-seeder/internal/common/metrics"
	"formbricks-seeder/internal/common/observability"
	"formbricks-seeder/internal/formbricks"
	"formbricks-seeder/internal/ollama"
	"formbricks-seeder/internal/ui"
)

// app carries what every command needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	configPath  string
	logLevel    string
	metricsFile string

	cfg     *config.Config
	zap     *zap.Logger
	log     logger.Logger
	console *ui.Console
	metrics *metrics.Registry
	// obs is set by commands that record OpenTelemetry metrics; it is shut
	// down after the textfile export.
	obs *observability.Observability
}

func (a *app) init(cmd *cobra.Command) error {
	a.console = ui.NewConsole(cmd.OutOrStdout())

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.metricsFile != "" {
		cfg.Metrics.TextfilePath = a.metricsFile
	}
	a.cfg = cfg

	a.zap = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	a.log = logger.NewZapAdapter(a.zap)
	a.metrics = metrics.New()

	a.log.Debug("Configuration loaded", map[string]interface{}{
		"formbricksUrl": cfg.Formbricks.URL,
		"ollamaUrl":     cfg.Ollama.URL,
		"environment":   cfg.App.Environment,
	})
	return nil
}

func (a *app) finish() error {
	if a.zap != nil {
		_ = a.zap.Sync()
	}
	if a.obs != nil {
		defer a.obs.Shutdown()
	}
	if a.cfg == nil || a.cfg.Metrics.TextfilePath == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("metrics export: %w", err)
	}
	a.log.Debug("Metrics written", map[string]interface{}{"path": a.cfg.Metrics.TextfilePath})
	return nil
}

func (a *app) formbricksClient(baseURL, apiKey string) *formbricks.Client {
	if baseURL == "" {
		baseURL = a.cfg.Formbricks.URL
	}
	return formbricks.NewClient(formbricks.Config{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		HealthPath:  a.cfg.Formbricks.HealthPath,
		Timeout:     config.GetDuration(a.cfg.HTTP.RequestTimeout),
		MaxAttempts: a.cfg.HTTP.MaxRetries,
	}, a.log, formbricks.WithRecorder(a.metrics))
}

func (a *app) ollamaClient(model string) *ollama.Client {
	if model == "" {
		model = a.cfg.Ollama.Model
	}
	return ollama.NewClient(ollama.Config{
		BaseURL:     a.cfg.Ollama.URL,
		Model:       model,
		Temperature: a.cfg.Ollama.Temperature,
		NumPredict:  a.cfg.Ollama.NumPredict,
		Timeout:     config.GetDuration(a.cfg.Ollama.Timeout),
		MaxAttempts: a.cfg.HTTP.MaxRetries,
	}, ollama.DefaultRetryPolicy(a.cfg.HTTP.MaxRetries), a.log)
}
