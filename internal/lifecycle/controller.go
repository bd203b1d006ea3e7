// Package lifecycle starts and stops the local Formbricks stack through
// docker compose.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"formbricks-seeder/internal/common/config"
	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/logger"
	"formbricks-seeder/internal/common/retry"
)

const logTail = 20

// HealthChecker reports whether the platform answers its health endpoint.
// *formbricks.Client implements it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

type Config struct {
	ComposeFile    string
	ProjectDir     string
	ServiceName    string
	StartupTimeout time.Duration
	PollInterval   time.Duration
}

func ConfigFrom(cfg config.ComposeConfig) Config {
	return Config{
		ComposeFile:    cfg.File,
		ProjectDir:     cfg.ProjectDir,
		ServiceName:    cfg.ServiceName,
		StartupTimeout: config.GetDuration(cfg.StartupTimeout),
		PollInterval:   config.GetDuration(cfg.PollInterval),
	}
}

// Progress is reported on every health poll while waiting for startup.
type Progress struct {
	Elapsed        time.Duration
	ServiceRunning bool
}

type UpOptions struct {
	Build    bool
	Timeout  time.Duration
	Progress func(Progress)
}

type UpResult struct {
	AlreadyRunning bool
	Elapsed        time.Duration
}

type DownOptions struct {
	Volumes bool
}

type Controller struct {
	cfg    Config
	runner Runner
	health HealthChecker
	logger logger.Logger
	sleep  retry.SleepFunc
	now    func() time.Time

	// compose is the resolved compose invocation: ["docker-compose"] or ["docker", "compose"].
	compose []string
}

func NewController(cfg Config, runner Runner, health HealthChecker, log logger.Logger) *Controller {
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = 180 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "formbricks"
	}
	return &Controller{
		cfg:    cfg,
		runner: runner,
		health: health,
		logger: log.WithFields(map[string]interface{}{"component": "lifecycle"}),
		sleep:  retry.ContextSleep,
		now:    time.Now,
	}
}

// SetClock replaces the sleep and clock used while polling, for tests.
func (c *Controller) SetClock(sleep retry.SleepFunc, now func() time.Time) {
	c.sleep = sleep
	c.now = now
}

// CheckPrerequisites verifies docker and a compose implementation (v1
// docker-compose binary or v2 plugin) are installed.
func (c *Controller) CheckPrerequisites(ctx context.Context) error {
	if _, err := c.runner.LookPath("docker"); err != nil {
		return apperrors.NewPrerequisiteMissingError("docker", "Install Docker: https://docs.docker.com/get-docker/")
	}
	if _, err := c.runner.Run(ctx, "", "docker", "--version"); err != nil {
		return apperrors.NewPrerequisiteMissingError("docker", "Docker is installed but not working. Is the daemon running?")
	}

	if _, err := c.runner.LookPath("docker-compose"); err == nil {
		if _, err := c.runner.Run(ctx, "", "docker-compose", "--version"); err == nil {
			c.compose = []string{"docker-compose"}
			return nil
		}
	}
	if _, err := c.runner.Run(ctx, "", "docker", "compose", "version"); err == nil {
		c.compose = []string{"docker", "compose"}
		return nil
	}
	return apperrors.NewPrerequisiteMissingError("docker compose", "Install Docker Compose: https://docs.docker.com/compose/install/")
}

// Up starts the stack and waits until the health endpoint answers. A stack
// that is already healthy is left alone.
func (c *Controller) Up(ctx context.Context, opts UpOptions) (*UpResult, error) {
	if c.health.HealthCheck(ctx) {
		c.logger.Info("Formbricks is already running", nil)
		return &UpResult{AlreadyRunning: true}, nil
	}

	if err := c.CheckPrerequisites(ctx); err != nil {
		return nil, err
	}
	composeFile, err := c.composeFile()
	if err != nil {
		return nil, err
	}

	args := []string{"-f", composeFile, "up", "-d"}
	if opts.Build {
		args = append(args, "--build")
	}
	c.logger.Info("Starting Formbricks", map[string]interface{}{
		"composeFile": composeFile,
		"build":       opts.Build,
	})
	if res, err := c.composeRun(ctx, args...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cmdErr := apperrors.NewCommandFailedError(c.commandLine(args), err, res.Stderr)
		return nil, cmdErr.WithMetadata("logs", c.Logs(ctx, composeFile))
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.cfg.StartupTimeout
	}
	return c.waitHealthy(ctx, composeFile, timeout, opts.Progress)
}

func (c *Controller) waitHealthy(ctx context.Context, composeFile string, timeout time.Duration, progress func(Progress)) (*UpResult, error) {
	start := c.now()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		elapsed := c.now().Sub(start)
		if c.health.HealthCheck(ctx) {
			c.logger.Info("Formbricks is healthy", map[string]interface{}{"elapsed": elapsed.String()})
			return &UpResult{Elapsed: elapsed}, nil
		}
		if elapsed >= timeout {
			c.logger.Error("Formbricks did not become healthy", map[string]interface{}{"timeout": timeout.String()})
			return nil, apperrors.NewStartupTimeoutError(timeout).WithMetadata("logs", c.Logs(ctx, composeFile))
		}
		if progress != nil {
			progress(Progress{Elapsed: elapsed, ServiceRunning: c.serviceRunning(ctx, composeFile)})
		}
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return nil, err
		}
	}
}

// Down stops the stack, removing volumes when requested.
func (c *Controller) Down(ctx context.Context, opts DownOptions) error {
	if err := c.CheckPrerequisites(ctx); err != nil {
		return err
	}
	composeFile, err := c.composeFile()
	if err != nil {
		return err
	}

	args := []string{"-f", composeFile, "down"}
	if opts.Volumes {
		args = append(args, "-v")
	}
	c.logger.Info("Stopping Formbricks", map[string]interface{}{"volumes": opts.Volumes})
	if res, err := c.composeRun(ctx, args...); err != nil {
		return apperrors.NewCommandFailedError(c.commandLine(args), err, res.Stderr)
	}
	return nil
}

// Logs returns the last lines of the platform service logs, or an empty
// string if they cannot be collected.
func (c *Controller) Logs(ctx context.Context, composeFile string) string {
	res, err := c.composeRun(ctx, "-f", composeFile, "logs", fmt.Sprintf("--tail=%d", logTail), c.cfg.ServiceName)
	if err != nil {
		c.logger.Warn("Failed to collect logs", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

func (c *Controller) serviceRunning(ctx context.Context, composeFile string) bool {
	res, err := c.composeRun(ctx, "-f", composeFile, "ps", "--services", "--filter", "status=running")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) == c.cfg.ServiceName {
			return true
		}
	}
	return false
}

func (c *Controller) composeFile() (string, error) {
	path := c.cfg.ComposeFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.cfg.ProjectDir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.NewConfigInvalidError(fmt.Sprintf("compose file not found: %s", path))
	}
	return path, nil
}

// composeRun resolves the compose invocation on first use.
func (c *Controller) composeRun(ctx context.Context, args ...string) (Result, error) {
	if len(c.compose) == 0 {
		if err := c.CheckPrerequisites(ctx); err != nil {
			return Result{}, err
		}
	}
	full := append(append([]string{}, c.compose[1:]...), args...)
	return c.runner.Run(ctx, c.cfg.ProjectDir, c.compose[0], full...)
}

func (c *Controller) commandLine(args []string) string {
	return strings.Join(append(append([]string{}, c.compose...), args...), " ")
}
