package clients

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	retrier := NewRetrier(nil)

	assert.True(t, retrier.ShouldRetry(0, errors.New("connection reset")))
	assert.True(t, retrier.ShouldRetry(http.StatusTooManyRequests, nil))
	assert.True(t, retrier.ShouldRetry(http.StatusServiceUnavailable, nil))
	assert.False(t, retrier.ShouldRetry(http.StatusBadRequest, nil))
	assert.False(t, retrier.ShouldRetry(http.StatusUnauthorized, nil))
	assert.False(t, retrier.ShouldRetry(http.StatusOK, nil))
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	retrier := NewRetrier(&RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	})

	assert.Equal(t, 100*time.Millisecond, retrier.Backoff(0, 0))
	assert.Equal(t, 200*time.Millisecond, retrier.Backoff(1, 0))
	assert.Equal(t, 400*time.Millisecond, retrier.Backoff(2, 0))
	assert.Equal(t, time.Second, retrier.Backoff(10, 0))
}

func TestBackoff_PrefersRetryAfter(t *testing.T) {
	retrier := NewRetrier(nil)

	assert.Equal(t, 3*time.Second, retrier.Backoff(0, 3*time.Second))
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, time.Duration(0), ParseRetryAfter(resp))

	resp.Header.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, ParseRetryAfter(resp))

	resp.Header.Set("Retry-After", "garbage")
	assert.Equal(t, time.Duration(0), ParseRetryAfter(resp))

	assert.Equal(t, time.Duration(0), ParseRetryAfter(nil))
}
