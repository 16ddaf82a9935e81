package middleware

import (
	"io"
	"net/http"
)

const defaultMaxBodyBytes = 256 << 10

// DrainAndCloseRequest caps request bodies at maxBodyBytes, then drains what
// the handler left unread and closes the body. A body over the cap fails the
// handler's decode instead of being read in full.
func DrainAndCloseRequest(maxBodyBytes int64) func(next http.Handler) http.Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.Copy(io.Discard, r.Body)
				_ = r.Body.Close()
			}
		})
	}
}
