package retry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"

	"scriptorium/internal/filestore"
)

// maxRetries bounds how often a failed remote call is re-attempted.
// One initial attempt plus maxRetries retries.
const maxRetries = 2

// Do runs fn, retrying retryable failures with exponential backoff.
// Terminal failures (auth, bad request) and context cancellation stop
// immediately.
func Do(ctx context.Context, fn func() error) error {
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx))
}

// Retryable reports whether an error is worth retrying. Definitive
// domain answers (an empty source folder) and context cancellation are
// terminal. Google API errors are retried on rate limiting and
// server-side failures; 4xx responses are terminal. Anything else is
// treated as a transient network failure.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, filestore.ErrNoTexts) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests {
			return true
		}
		return gerr.Code >= http.StatusInternalServerError
	}

	return true
}
