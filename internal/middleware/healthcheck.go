package middleware

import (
	"net/http"
)

// HealthCheck answers requests on statusPath before they reach the router.
// An empty statusPath disables it.
func HealthCheck(statusPath string) Middleware {
	return func(handler http.Handler) http.Handler {
		if statusPath == "" {
			return handler
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != statusPath {
				handler.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte("success\n"))
		})
	}
}
