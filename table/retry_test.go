package table

import (
	"context"
	"testing"
	"time"

	"github.com/gear6io/icebergcore/config"
	"github.com/gear6io/icebergcore/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRetryConfigFromCommitConfigMatchesDefaults(t *testing.T) {
	cfg := RetryConfigFromCommitConfig(config.DefaultConfig().Commit)
	def := DefaultRetryConfig()
	require.Equal(t, def.MaxAttempts, cfg.MaxAttempts)
	require.Equal(t, def.BaseDelay, cfg.BaseDelay)
	require.Equal(t, def.MaxDelay, cfg.MaxDelay)
}

func TestRetryCommitSucceedsAfterTransientConflicts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, BackoffFactor: 2, JitterFactor: 0}
	attempts := 0
	err := RetryCommit(context.Background(), cfg, func(ctx context.Context, attempt int) error {
		attempts++
		if attempt < 3 {
			return errors.New(ErrCommitConflict, "lost race", nil)
		}
		return nil
	}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryCommitExhaustsAndWrapsLastError(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2, JitterFactor: 0}
	err := RetryCommit(context.Background(), cfg, func(ctx context.Context, attempt int) error {
		return errors.New(ErrCommitConflict, "lost race", nil)
	}, zerolog.Nop())
	require.Error(t, err)
	e, ok := err.(*errors.Error)
	require.True(t, ok)
	require.Equal(t, ErrCommitRetryExhausted, e.Code)
}

func TestRetryCommitDoesNotRetryNonConflictErrors(t *testing.T) {
	cfg := DefaultRetryConfig()
	attempts := 0
	terminal := errors.New(ErrUpdateInvalid, "not retryable", nil)
	err := RetryCommit(context.Background(), cfg, func(ctx context.Context, attempt int) error {
		attempts++
		return terminal
	}, zerolog.Nop())
	require.Equal(t, terminal, err)
	require.Equal(t, 1, attempts)
}

func TestRetryCommitRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := DefaultRetryConfig()
	err := RetryCommit(ctx, cfg, func(ctx context.Context, attempt int) error {
		t.Fatal("operation should not run with an already-cancelled context")
		return nil
	}, zerolog.Nop())
	require.ErrorIs(t, err, context.Canceled)
}
