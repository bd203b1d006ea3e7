package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and check connectivity",
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			warnings := a.cfg.Warnings(cmd.Context(), a.ollamaClient("").Ping)
			a.console.ConfigTable(a.cfg.Display(), warnings)
			return nil
		},
	}
}

var setupSteps = []string{
	"Start Formbricks: formbricks-seeder formbricks up",
	"Open %s and create an account and an organization",
	"Create an API key under Organization settings → API Keys",
	"Put it in .env as FORMBRICKS_API_KEY=<key>",
	"Install Ollama (https://ollama.com) and pull a model: ollama pull %s",
	"Generate data: formbricks-seeder formbricks generate",
	"Seed it: formbricks-seeder formbricks seed",
}

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Check local prerequisites and print the setup steps",
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := a.controller().CheckPrerequisites(ctx); err != nil {
				a.console.Fail("Docker: %v", err)
			} else {
				a.console.Success("Docker and docker compose found")
			}
			if err := a.ollamaClient("").Ping(ctx); err != nil {
				a.console.Warn("Ollama not running at %s", a.cfg.Ollama.URL)
			} else {
				a.console.Success("Ollama reachable at %s", a.cfg.Ollama.URL)
			}
			if a.formbricksClient("", "").HealthCheck(ctx) {
				a.console.Success("Formbricks running at %s", a.cfg.Formbricks.URL)
			} else {
				a.console.Muted("Formbricks not running at %s", a.cfg.Formbricks.URL)
			}

			steps := make([]string, len(setupSteps))
			for i, s := range setupSteps {
				switch i {
				case 1:
					s = fmt.Sprintf(s, a.cfg.Formbricks.URL)
				case 4:
					s = fmt.Sprintf(s, a.cfg.Ollama.Model)
				}
				steps[i] = s
			}
			a.console.Steps("Setup", steps)
			return nil
		},
	}
}
