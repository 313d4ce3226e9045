package httpclient

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID returns a middleware that stamps every outgoing request with an
// X-Request-ID header so backend logs can be correlated with client activity.
// A caller-provided header is kept when it is valid: at most 128 bytes of
// printable ASCII (0x20-0x7E).
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if isValidRequestID(r.Header.Get("X-Request-ID")) {
				return next.RoundTrip(r)
			}
			// RoundTrippers must not mutate the original request.
			r = r.Clone(r.Context())
			r.Header.Set("X-Request-ID", uuid.New().String())
			return next.RoundTrip(r)
		})
	}
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for i := range len(id) {
		if id[i] < 0x20 || id[i] > 0x7E {
			return false
		}
	}
	return true
}
