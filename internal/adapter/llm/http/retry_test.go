package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return MapStatus("test", 429, "rate limited")
		}
		return nil
	}, fastRetryConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_NonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		return MapStatus("test", 401, "bad key")
	}, fastRetryConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_GenericErrorNotRetried(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("plain failure")
	}, fastRetryConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func(context.Context) error {
		attempts++
		return MapStatus("test", 503, "down")
	}, fastRetryConfig(2))

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial try plus two retries

	var httpErr *Error
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, ErrTypeServiceUnavailable, httpErr.Type)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func(context.Context) error {
		t.Fatal("operation must not run after cancellation")
		return nil
	}, fastRetryConfig(5))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExponentialBackoff_Bounds(t *testing.T) {
	config := DefaultRetryConfig()

	for attempt := 0; attempt < 10; attempt++ {
		b := ExponentialBackoff(attempt, config)
		assert.GreaterOrEqual(t, b, time.Duration(0))
		assert.LessOrEqual(t, b, config.MaxBackoff)
	}
}

func TestShouldRetry(t *testing.T) {
	assert.False(t, ShouldRetry(nil))
	assert.False(t, ShouldRetry(errors.New("x")))
	assert.True(t, ShouldRetry(MapStatus("p", 429, "")))
	assert.False(t, ShouldRetry(MapStatus("p", 400, "")))
}
