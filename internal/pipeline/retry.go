package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/gridlock/internal/ocr"
)

// MaxRetries is the number of recognition attempts per job.
const MaxRetries = 3

const maxBackoff = 30 * time.Second

// IsRetryable reports whether a recognition error is transient.
func IsRetryable(err error) bool {
	var transient *ocr.RetryableError
	return errors.As(err, &transient)
}

// Backoff doubles from one second per attempt, capped at maxBackoff, plus up
// to half again in jitter.
func Backoff(attempt int) time.Duration {
	d := min(time.Second<<uint(attempt), maxBackoff)
	return d + time.Duration(rand.Int64N(int64(d)/2))
}

// retry calls fn up to attempts times while it fails with a retryable error,
// sleeping wait(n) between calls. onRetry sees each error that is retried.
func retry[T any](ctx context.Context, attempts int, wait func(int) time.Duration, onRetry func(int, error), fn func() (T, error)) (T, error) {
	var (
		v   T
		err error
	)
	for n := range attempts {
		if v, err = fn(); err == nil || !IsRetryable(err) || n == attempts-1 {
			return v, err
		}
		onRetry(n, err)
		select {
		case <-time.After(wait(n)):
		case <-ctx.Done():
			return v, ctx.Err()
		}
	}
	return v, err
}
