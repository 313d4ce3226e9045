package httpclient

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Logging returns a middleware that logs each outbound request with its
// status and duration, using the logger carried in the request context.
func Logging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			res, err := next.RoundTrip(r)

			lg := zctx.From(r.Context())
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("url", r.URL.String()),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				lg.Warn("Backend request failed", append(fields, zap.Error(err))...)
				return res, err
			}
			lg.Debug("Backend request", append(fields, zap.Int("status", res.StatusCode))...)
			return res, nil
		})
	}
}
