package media

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/camsync/internal/common"
)

const (
	// DefaultStripAttempts bounds how many times stripping is tried when
	// the device is out of space; with DefaultStripDelay this gives the
	// stage roughly a minute to recover.
	DefaultStripAttempts = 60
	DefaultStripDelay    = time.Second
)

// StripRunner drives a LocationStripper with a fixed-delay retry loop on
// transient insufficient-storage failures. Any other error stops the loop
// immediately.
type StripRunner struct {
	stripper LocationStripper
	delay    time.Duration
	attempts uint64
}

func NewStripRunner(stripper LocationStripper) *StripRunner {
	return &StripRunner{stripper: stripper, delay: DefaultStripDelay, attempts: DefaultStripAttempts}
}

// NewStripRunnerWithBackoff overrides the retry policy; tests use short
// delays.
func NewStripRunnerWithBackoff(stripper LocationStripper, delay time.Duration, attempts uint64) *StripRunner {
	return &StripRunner{stripper: stripper, delay: delay, attempts: attempts}
}

// Run strips location tags from src into dst, retrying on insufficient
// storage up to the configured attempt count. The returned error is
// common.ErrLocalFileMissing when the source vanished, or the last
// underlying failure otherwise.
func (r *StripRunner) Run(ctx context.Context, src, dst string) error {
	backoff := retry.WithMaxRetries(r.attempts-1, retry.NewConstant(r.delay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := r.stripper.StripLocation(ctx, src, dst)
		if errors.Is(err, common.ErrInsufficientStorage) {
			return retry.RetryableError(err)
		}
		return err
	})
}
