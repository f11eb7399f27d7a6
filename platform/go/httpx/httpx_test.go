package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	require.True(t, IsRetryableHTTPStatus(http.StatusRequestTimeout))
	require.True(t, IsRetryableHTTPStatus(http.StatusTooManyRequests))
	require.True(t, IsRetryableHTTPStatus(http.StatusBadGateway))
	require.False(t, IsRetryableHTTPStatus(http.StatusBadRequest))
	require.False(t, IsRetryableHTTPStatus(http.StatusOK))
}

func TestIsRetryableError(t *testing.T) {
	require.False(t, IsRetryableError(nil))
	require.False(t, IsRetryableError(context.Canceled))
	require.False(t, IsRetryableError(context.DeadlineExceeded))
	require.True(t, IsRetryableError(&StatusError{StatusCode: http.StatusServiceUnavailable}))
	require.False(t, IsRetryableError(&StatusError{StatusCode: http.StatusNotFound}))
	require.True(t, IsRetryableError(fmt.Errorf("call upstream: %w", &StatusError{StatusCode: 500})))
}

func TestStatusOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &StatusError{StatusCode: 418, Body: "teapot"})
	require.Equal(t, 418, StatusOf(err))
	require.Equal(t, 0, StatusOf(errors.New("plain")))
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "5")

	require.Equal(t, 5*time.Second, RetryAfterDuration(resp, time.Second, 10*time.Second))
	require.Equal(t, 3*time.Second, RetryAfterDuration(resp, time.Second, 3*time.Second))
	require.Equal(t, time.Second, RetryAfterDuration(nil, time.Second, 10*time.Second))
}

func TestJitterSleepBounds(t *testing.T) {
	base := time.Second
	for i := 0; i < 100; i++ {
		d := JitterSleep(base)
		require.GreaterOrEqual(t, d, 800*time.Millisecond)
		require.LessOrEqual(t, d, 1200*time.Millisecond)
	}
	require.Equal(t, time.Duration(0), JitterSleep(0))
}
