package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/punchclock/internal/service"
)

func TestSchemaError(t *testing.T) {
	err := fmt.Errorf("failed to read sheet: %w", &SchemaError{Missing: []string{"Fecha", "Salida"}})

	assert.ErrorIs(t, err, ErrSchemaInvalid)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Fecha", "Salida"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "Fecha, Salida")
}

func TestBatchIncompleteError(t *testing.T) {
	err := &BatchIncompleteError{Outstanding: []string{"a", "b"}}

	assert.ErrorIs(t, err, ErrBatchIncomplete)
	assert.Contains(t, err.Error(), "2 record(s)")
}

func TestUserError(t *testing.T) {
	inner := errors.New("boom")
	err := NewUserError("could not open document", inner)

	assert.Equal(t, "could not open document: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "rate limit", err: fmt.Errorf("sheets: %w", ErrRateLimit), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "explicit retryable", err: &RetryableError{Err: errors.New("503"), Retryable: true}, want: true},
		{name: "explicit permanent", err: &RetryableError{Err: errors.New("400"), Retryable: false}, want: false},
		{name: "pipeline error", err: ErrBatchIncomplete, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	opts := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, opts)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: errors.New("bad request"), Retryable: false}
		}, opts)

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		err := WithRetry(context.Background(), func() error {
			return errors.New("still down")
		}, opts)

		assert.ErrorIs(t, err, ErrMaxRetries)
	})
}

func TestBackoffSchedule(t *testing.T) {
	b := newBackoff(service.RetryOptions{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond})

	assert.Equal(t, 3, b.opts.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, b.wait(errors.New("x")))
	assert.Equal(t, 20*time.Millisecond, b.wait(errors.New("x")))
	assert.Equal(t, 40*time.Millisecond, b.wait(errors.New("x")))
	assert.Equal(t, 50*time.Millisecond, b.wait(errors.New("x")))

	b = newBackoff(service.RetryOptions{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond})
	assert.Equal(t, 50*time.Millisecond, b.wait(fmt.Errorf("sheets: %w", ErrRateLimit)))
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("down")
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
