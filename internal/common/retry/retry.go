// Package retry runs an operation under an explicit exponential backoff policy.
package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	apperrors "formbricks-seeder/internal/common/errors"
	"formbricks-seeder/internal/common/logger"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. The zero value is not usable; start from one of the
// constructors and override fields as needed.
type Policy struct {
	Name         string
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration

	// RateLimitCooldown is added to the backoff wait when the failed attempt
	// was rate limited.
	RateLimitCooldown time.Duration

	Retryable func(err error) bool
	Sleep     SleepFunc

	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, err error, wait time.Duration)
	Logger  logger.Logger
}

// New returns a policy with the given schedule, retrying errors marked
// retryable in the shared error taxonomy.
func New(name string, maxAttempts int, initial, maxDelay time.Duration) Policy {
	return Policy{
		Name:         name,
		MaxAttempts:  maxAttempts,
		InitialDelay: initial,
		MaxDelay:     maxDelay,
		Retryable:    apperrors.IsRetryable,
		Sleep:        ContextSleep,
	}
}

// ContextSleep is the production SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delay returns the backoff before attempt n+1, given that attempt n (1-based) failed.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := p.InitialDelay
	for i := 1; i < n; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Do calls op until it succeeds, returns a non-retryable error, or the attempt
// budget is spent. Non-retryable errors are returned as-is.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = apperrors.IsRetryable
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = op(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		wait := p.Delay(attempt)
		if stderrors.Is(err, apperrors.ErrRateLimited) {
			wait += p.RateLimitCooldown
		}
		if p.Logger != nil {
			p.Logger.Warn(fmt.Sprintf("%s failed, retrying...", p.Name), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     attempt,
				"maxAttempts": attempts,
				"nextRetryIn": wait.String(),
			})
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", p.Name, attempts, err)
}
