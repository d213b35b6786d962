// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"

	"github.com/yanizio/hostview/internal/requestinfo"
)

// ForceHTTPS returns a middleware that 308-redirects plain-HTTP requests
// to the same URL over HTTPS.  localhost is never redirected so local
// development keeps working.  When enabled is false the middleware is a
// passthrough.
func ForceHTTPS(enabled bool) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Already HTTPS, proxied HTTPS, or dev host → continue.
			if r.TLS != nil ||
				r.Header.Get("X-Forwarded-Proto") == "https" ||
				requestinfo.Hostname(r) == "localhost" {
				next.ServeHTTP(w, r)
				return
			}

			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}
