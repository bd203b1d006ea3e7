package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"formbricks-seeder/internal/lifecycle"
)

func (a *app) controller() *lifecycle.Controller {
	return lifecycle.NewController(
		lifecycle.ConfigFrom(a.cfg.Compose),
		lifecycle.ExecRunner{},
		a.formbricksClient("", ""),
		a.log,
	)
}

func newUpCmd(a *app) *cobra.Command {
	var (
		build   bool
		timeout int
	)
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start Formbricks with docker compose and wait until it is healthy",
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.console.Panel("Starting Formbricks", a.cfg.Formbricks.URL)

			opts := lifecycle.UpOptions{Build: build, Progress: a.console.StartupProgress}
			if timeout > 0 {
				opts.Timeout = time.Duration(timeout) * time.Second
			}
			res, err := a.controller().Up(cmd.Context(), opts)
			if err != nil {
				return err
			}
			a.console.Started(res, a.cfg.Formbricks.URL)
			if !res.AlreadyRunning {
				a.console.Muted("Next: create an account and an API key, then run 'formbricks-seeder formbricks generate'")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&build, "build", false, "rebuild images before starting")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "seconds to wait for the health check (default from config)")
	return cmd
}

func newDownCmd(a *app) *cobra.Command {
	var (
		volumes bool
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the Formbricks stack",
		Args:  requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				question := "Stop Formbricks?"
				if volumes {
					question = "Stop Formbricks and delete all of its data?"
				}
				if !confirm(cmd, question) {
					a.console.Muted("Cancelled")
					return nil
				}
			}

			if err := a.controller().Down(cmd.Context(), lifecycle.DownOptions{Volumes: volumes}); err != nil {
				return err
			}
			if volumes {
				a.console.Success("Formbricks stopped and volumes removed")
			} else {
				a.console.Success("Formbricks stopped")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&volumes, "volumes", "v", false, "also remove volumes (deletes all data)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on the command's stdin; anything but y/yes is no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
