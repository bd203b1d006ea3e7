// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formbricks-seeder/internal/common/config"
	"formbricks-seeder/internal/common/logger"
	"formbricks-seeder/internal/common/metrics"
	"formbricks-seeder/internal/formbricks"
	"formbricks-seeder/internal/generator"
	"formbricks-seeder/internal/ollama"
	"formbricks-seeder/internal/seeder"
	"formbricks-seeder/internal/snapshot"
)

// These tests run against a live stack started with `formbricks-seeder
// formbricks up` and a local Ollama. They are skipped unless E2E=1.
type environment struct {
	cfg        *config.Config
	log        logger.Logger
	formbricks *formbricks.Client
	ollama     *ollama.Client
}

func setup(t *testing.T) *environment {
	t.Helper()
	if testing.Short() || os.Getenv("E2E") != "1" {
		t.Skip("Skipping E2E tests (set E2E=1 with a running stack)")
	}

	cfg, err := config.Load("")
	require.NoError(t, err)
	log := logger.NewTestLogger(t)

	env := &environment{
		cfg: cfg,
		log: log,
		formbricks: formbricks.NewClient(formbricks.Config{
			BaseURL:     cfg.Formbricks.URL,
			APIKey:      cfg.Formbricks.APIKey,
			HealthPath:  cfg.Formbricks.HealthPath,
			Timeout:     config.GetDuration(cfg.HTTP.RequestTimeout),
			MaxAttempts: cfg.HTTP.MaxRetries,
		}, log),
		ollama: ollama.NewClient(ollama.Config{
			BaseURL:     cfg.Ollama.URL,
			Model:       cfg.Ollama.Model,
			Temperature: cfg.Ollama.Temperature,
			NumPredict:  cfg.Ollama.NumPredict,
			Timeout:     config.GetDuration(cfg.Ollama.Timeout),
		}, ollama.DefaultRetryPolicy(cfg.HTTP.MaxRetries), log),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if !env.formbricks.HealthCheck(ctx) {
		t.Skipf("Formbricks not reachable at %s", cfg.Formbricks.URL)
	}
	if cfg.Formbricks.APIKey == "" {
		t.Skip("FORMBRICKS_API_KEY not set")
	}
	return env
}

func TestE2E_GenerateAndSeed(t *testing.T) {
	env := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	gen := generator.NewService(generator.Config{Pacing: time.Second, Seed: 1}, env.ollama, env.log)
	ds, err := gen.Synthesize(ctx, 2, 7)
	require.NoError(t, err)
	require.Len(t, ds.Surveys, 2)

	dir := filepath.Join(t.TempDir(), "data")
	_, err = snapshot.NewStore(dir).Save(ds, 1)
	require.NoError(t, err)

	reg := metrics.New()
	svc := seeder.NewService(seeder.ServiceDependencies{
		Connect: func(baseURL, apiKey string) seeder.PlatformAPI {
			env.formbricks.SetAPIKey(apiKey)
			return env.formbricks
		},
		Logger:  env.log,
		Metrics: reg,
	}, seeder.DefaultPacing())

	tally, err := svc.Run(ctx, seeder.Options{
		DataDir: dir,
		APIKey:  env.cfg.Formbricks.APIKey,
		BaseURL: env.cfg.Formbricks.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Surveys.Created)
	assert.FileExists(t, filepath.Join(dir, "survey_mapping.json"))

	for name, id := range tally.SurveyIDs {
		survey, err := env.formbricks.GetSurvey(ctx, id)
		require.NoError(t, err, name)
		assert.Equal(t, id, formbricks.ResultID(survey))
	}
}

func TestE2E_ListSurveys(t *testing.T) {
	env := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, err := env.formbricks.GetSurveys(ctx)
	assert.NoError(t, err)
}
