package httpclient

import (
	"io"
	"net/http"
	"time"
)

// RetryConfig controls the retry middleware.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// Backoff is the delay before each retry, doubled per attempt.
	Backoff time.Duration
}

// Retry returns a middleware that retries idempotent requests (GET and HEAD)
// on transport errors, 5xx responses, and 429. Requests with bodies are never
// retried: the body has already been consumed by the first attempt.
func Retry(cfg RetryConfig) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				return next.RoundTrip(r)
			}

			var (
				res     *http.Response
				err     error
				backoff = cfg.Backoff
			)
			for attempt := 0; ; attempt++ {
				res, err = next.RoundTrip(r)
				if !shouldRetry(res, err) || attempt >= cfg.MaxRetries {
					return res, err
				}
				if res != nil {
					// Drain so the connection can be reused.
					io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
					res.Body.Close()
				}

				select {
				case <-r.Context().Done():
					return nil, r.Context().Err()
				case <-time.After(backoff):
				}
				backoff *= 2
			}
		})
	}
}

func shouldRetry(res *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests
}
