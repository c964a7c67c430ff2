package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/punchclock/internal/service"
)

var (
	// ErrRateLimit indicates that a remote API rate limit has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError marks a transport error as worth retrying or not.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

var defaultRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     30 * time.Second,
	Multiplier:   2.0,
}

// backoff yields the wait before each retry.
type backoff struct {
	next time.Duration
	opts service.RetryOptions
}

func newBackoff(opts service.RetryOptions) *backoff {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultRetry.MaxAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultRetry.InitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultRetry.MaxDelay
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = defaultRetry.Multiplier
	}
	return &backoff{next: opts.InitialDelay, opts: opts}
}

// wait returns the delay to apply after err and advances the schedule.
// A rate limit jumps straight to the ceiling.
func (b *backoff) wait(err error) time.Duration {
	if errors.Is(err, ErrRateLimit) {
		b.next = b.opts.MaxDelay
	}
	d := min(b.next, b.opts.MaxDelay)
	b.next = min(time.Duration(float64(d)*b.opts.Multiplier), b.opts.MaxDelay)
	return d
}

func permanent(err error) bool {
	var re *RetryableError
	return errors.As(err, &re) && !re.Retryable
}

// WithRetry runs a remote operation until it succeeds, fails permanently, or
// exhausts its attempts. Only transport calls such as report publishing use it.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	b := newBackoff(opts)
	logger := Logger(ctx)

	var err error
	for attempt := 1; ; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if permanent(err) {
			return err
		}
		if attempt >= b.opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		delay := b.wait(err)
		logger.Warn("Remote call failed, retrying",
			"attempt", attempt,
			"max_attempts", b.opts.MaxAttempts,
			"delay", delay,
			"error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
