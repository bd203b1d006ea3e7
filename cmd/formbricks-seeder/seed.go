package main

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/seeder"
)

func newSeedCmd(a *app) *cobra.Command {
	var opts seeder.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Submit the latest generated data to Formbricks",
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.APIKey == "" {
				opts.APIKey = a.cfg.Formbricks.APIKey
			}
			if opts.DataDir == "" {
				opts.DataDir = a.cfg.Seeding.DataDir
			}
			if opts.BaseURL == "" {
				opts.BaseURL = a.cfg.Formbricks.URL
			}

			a.console.Panel("Seeding Formbricks", opts.BaseURL)
			if !a.formbricksClient(opts.BaseURL, "").HealthCheck(ctx) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return apperrors.NewServiceUnavailableError("formbricks", errNotReachable(opts.BaseURL))
			}

			svc := seeder.NewService(seeder.ServiceDependencies{
				Connect: func(baseURL, apiKey string) seeder.PlatformAPI {
					return a.formbricksClient(baseURL, apiKey)
				},
				Logger:   a.log,
				Reporter: a.console.SeedReporter(),
				Metrics:  a.metrics,
			}, seeder.PacingFromConfig(a.cfg.Seeding))

			tally, err := svc.Run(ctx, opts)
			if tally != nil {
				a.console.SeedSummary(tally)
			}
			if err != nil {
				return err
			}
			a.console.Success("Seeding complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "Formbricks API key (default FORMBRICKS_API_KEY)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory with generated snapshots (default from config)")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "Formbricks base URL (default FORMBRICKS_URL)")
	cmd.Flags().BoolVar(&opts.SkipUsers, "skip-users", false, "do not invite users")
	cmd.Flags().BoolVar(&opts.SkipResponses, "skip-responses", false, "do not submit responses")
	return cmd
}

func errNotReachable(url string) error {
	return fmt.Errorf("no healthy answer from %s", url)
}
