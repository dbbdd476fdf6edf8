package media

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/camsync/internal/common"
)

type fakeStripper struct {
	calls   atomic.Int64
	results []error // consumed in order; last one repeats
}

func (f *fakeStripper) StripLocation(ctx context.Context, src, dst string) error {
	n := f.calls.Add(1)
	idx := int(n) - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx]
}

func TestStripRunner_SucceedsAfterTransientFailures(t *testing.T) {
	s := &fakeStripper{results: []error{common.ErrInsufficientStorage, common.ErrInsufficientStorage, nil}}
	r := NewStripRunnerWithBackoff(s, time.Millisecond, 60)

	err := r.Run(context.Background(), "src", "dst")
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.calls.Load())
}

func TestStripRunner_GivesUpAfterConfiguredAttempts(t *testing.T) {
	s := &fakeStripper{results: []error{common.ErrInsufficientStorage}}
	delay := time.Millisecond
	r := NewStripRunnerWithBackoff(s, delay, 60)

	start := time.Now()
	err := r.Run(context.Background(), "src", "dst")
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, common.ErrInsufficientStorage)
	assert.Equal(t, int64(60), s.calls.Load(), "exactly 60 attempts")
	assert.GreaterOrEqual(t, elapsed, 59*delay, "a delay between each pair of attempts")
}

func TestStripRunner_StopsImmediatelyOnMissingFile(t *testing.T) {
	s := &fakeStripper{results: []error{common.ErrLocalFileMissing}}
	r := NewStripRunnerWithBackoff(s, time.Millisecond, 60)

	err := r.Run(context.Background(), "src", "dst")
	assert.ErrorIs(t, err, common.ErrLocalFileMissing)
	assert.Equal(t, int64(1), s.calls.Load())
}

func TestStripRunner_StopsImmediatelyOnOtherError(t *testing.T) {
	boom := errors.New("corrupt exif block")
	s := &fakeStripper{results: []error{boom}}
	r := NewStripRunnerWithBackoff(s, time.Millisecond, 60)

	err := r.Run(context.Background(), "src", "dst")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), s.calls.Load())
}

func TestStripRunner_CancelledContextStopsRetry(t *testing.T) {
	s := &fakeStripper{results: []error{common.ErrInsufficientStorage}}
	r := NewStripRunnerWithBackoff(s, 50*time.Millisecond, 60)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Run(ctx, "src", "dst")
	require.Error(t, err)
	assert.Less(t, s.calls.Load(), int64(5))
}
