package table

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"

	"github.com/gear6io/icebergcore/config"
	"github.com/gear6io/icebergcore/pkg/errors"
	"github.com/rs/zerolog"
)

// RetryConfig controls the OCC commit retry loop. It adds a
// multiplicative jitter factor on top of plain exponential backoff so
// concurrent committers don't wake up in lockstep and immediately collide
// again.
type RetryConfig struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterFactor  float64
}

// DefaultRetryConfig is the commit-protocol's OCC retry policy: 5 attempts,
// base 100ms, cap 5s, doubling backoff, +/-20% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   5,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.2,
	}
}

// RetryConfigFromCommitConfig derives the OCC retry loop's tuning from a
// table's resolved commit.retry.* properties (config.CommitConfig), keeping
// this package's doubling-backoff-plus-jitter shape but letting table
// properties override attempt count and delay bounds. The jitter factor
// itself isn't exposed as a table property, so it stays fixed at
// DefaultRetryConfig's 0.2.
func RetryConfigFromCommitConfig(c config.CommitConfig) RetryConfig {
	return RetryConfig{
		MaxAttempts:   c.NumRetries + 1,
		BaseDelay:     c.MinWaitMs,
		MaxDelay:      c.MaxWaitMs,
		BackoffFactor: 2.0,
		JitterFactor:  0.2,
	}
}

// RetryableCommit is one attempt at the commit body; it returns a
// *pkg/errors.Error with ErrCommitConflict when the attempt should be
// retried, and any other error (or nil) terminates the loop immediately.
type RetryableCommit func(ctx context.Context, attempt int) error

func isRetryable(err error) bool {
	e, ok := err.(*errors.Error)
	return ok && e.Code == ErrCommitConflict
}

// RetryCommit runs op up to cfg.MaxAttempts times, retrying only on
// ErrCommitConflict with exponential, jittered backoff between attempts;
// any other error terminates the loop immediately rather than retrying.
func RetryCommit(ctx context.Context, cfg RetryConfig, op RetryableCommit, logger zerolog.Logger) error {
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx, attempt)
		if err == nil {
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("commit succeeded after retry")
			}
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		wait := jitter(delay, cfg.JitterFactor)
		logger.Warn().Int("attempt", attempt).Dur("wait", wait).Err(err).Msg("commit conflict, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(math.Min(float64(cfg.MaxDelay), float64(delay)*cfg.BackoffFactor))
	}

	return errors.New(ErrCommitRetryExhausted, "commit retries exhausted", lastErr)
}

// jitter multiplies d by a uniform random factor in [1-f, 1+f].
func jitter(d time.Duration, f float64) time.Duration {
	if f <= 0 {
		return d
	}
	n, err := rand.Int(rand.Reader, big.NewInt(2001))
	if err != nil {
		return d
	}
	// n in [0, 2000] maps to factor in [1-f, 1+f]
	factor := (1 - f) + (float64(n.Int64())/1000.0)*f
	return time.Duration(float64(d) * factor)
}
