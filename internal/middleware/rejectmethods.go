package middleware

import (
	"net/http"

	"gitlab.com/tachyons/pages-ssr/internal/httperrors"
	"gitlab.com/tachyons/pages-ssr/metrics"
)

var validMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// RejectMethods serves a 405 page for requests with a non standard HTTP method
func RejectMethods(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validMethods[r.Method] {
			metrics.RejectedRequestsCount.Inc()
			httperrors.Serve405(w)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
