// cmd/formbricks-seeder/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/logger"
	"formbricks-seeder/internal/ui"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)

	err := root.ExecuteContext(ctx)
	// Metrics are exported for failed runs too.
	if finishErr := a.finish(); err == nil {
		err = finishErr
	}
	if err == nil {
		return exitOK
	}

	console := a.console
	if console == nil {
		console = ui.NewConsole(stdout)
	}
	if stderrors.Is(err, context.Canceled) || ctx.Err() != nil {
		console.Warn("Interrupted by user")
		return exitInterrupted
	}

	log := a.log
	if log == nil {
		log = logger.NewStructured("info", "console")
	}
	command := root.Name()
	if cmd, _, findErr := root.Find(args); findErr == nil {
		command = cmd.CommandPath()
	}
	se, remediation := apperrors.NewErrorHandler(log).Handle(command, err)
	console.Error(se, remediation)
	return exitFailure
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "formbricks-seeder",
		Short: "Run a local Formbricks instance and fill it with realistic data",
		Long: `formbricks-seeder manages a local Formbricks stack through docker compose,
generates surveys with a local Ollama model, and seeds them together with
users and responses through the Formbricks APIs.

Typical flow:
  formbricks-seeder formbricks up
  formbricks-seeder formbricks generate
  formbricks-seeder formbricks seed`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a yaml config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	formbricks := &cobra.Command{
		Use:   "formbricks",
		Short: "Manage and seed the local Formbricks instance",
	}
	formbricks.AddCommand(
		newUpCmd(a),
		newDownCmd(a),
		newGenerateCmd(a),
		newSeedCmd(a),
	)

	root.AddCommand(formbricks, newConfigCmd(a), newSetupCmd(a))
	return root
}

func requireNoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return apperrors.NewConfigInvalidError(fmt.Sprintf("unexpected arguments: %v", args))
	}
	return nil
}
