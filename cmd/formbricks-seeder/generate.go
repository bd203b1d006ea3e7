package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"formbricks-seeder/internal/common/cache"
	"formbricks-seeder/internal/common/config"
	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/observability"
	"formbricks-seeder/internal/generator"
	"formbricks-seeder/internal/snapshot"
)

const providerOllama = "ollama"

func newGenerateCmd(a *app) *cobra.Command {
	var (
		provider   string
		model      string
		numSurveys int
		numUsers   int
		outputDir  string
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate surveys, users and responses into JSON snapshot files",
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if provider != providerOllama {
				return apperrors.NewConfigInvalidError(fmt.Sprintf("unsupported provider %q (only %q)", provider, providerOllama))
			}
			if !cmd.Flags().Changed("num-surveys") {
				numSurveys = a.cfg.Generation.NumSurveys
			}
			if !cmd.Flags().Changed("num-users") {
				numUsers = a.cfg.Generation.NumUsers
			}
			if outputDir == "" {
				outputDir = a.cfg.Generation.OutputDir
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Generation.Seed
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			chat := a.ollamaClient(model)
			a.console.Panel("Generating data", fmt.Sprintf("%d surveys, %d users via %s (%s)", numSurveys, numUsers, provider, chat.Model()))

			obs := observability.New("formbricks-seeder", a.metrics.Registerer(), a.log)
			a.obs = obs

			opts := []generator.Option{
				generator.WithRecorder(obs),
				generator.WithProgress(a.console.SurveyGenerated),
			}
			if a.cfg.Cache.Enabled() {
				rdb := cache.NewRedis(a.cfg.Cache.Redis)
				defer rdb.Close()
				if err := rdb.Ping(ctx); err != nil {
					a.log.Warn("LLM cache disabled", map[string]interface{}{"error": err.Error()})
				} else {
					opts = append(opts, generator.WithCache(cache.NewLLMCache(rdb.Client, config.GetDuration(a.cfg.Cache.TTL))))
				}
			}

			svc := generator.NewService(generator.Config{
				Pacing: config.GetMillis(a.cfg.Generation.Pacing),
				Seed:   seed,
			}, chat, a.log, opts...)

			ds, err := svc.Synthesize(ctx, numSurveys, numUsers)
			if err != nil {
				return err
			}

			manifest, err := snapshot.NewStore(outputDir).Save(ds, seed)
			if err != nil {
				return err
			}
			a.console.GenerationSummary(ds, manifest, outputDir)
			a.console.Muted("Seed %d (pass --seed %d to reproduce users and responses)", seed, seed)
			a.console.Success("Data generated. Next: formbricks-seeder formbricks seed")
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", providerOllama, "text generation provider")
	cmd.Flags().StringVar(&model, "model", "", "model name (default from OLLAMA_MODEL)")
	cmd.Flags().IntVar(&numSurveys, "num-surveys", 5, "number of surveys")
	cmd.Flags().IntVar(&numUsers, "num-users", 10, "number of users")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for the snapshot files (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for users and responses (0 picks one)")
	return cmd
}
