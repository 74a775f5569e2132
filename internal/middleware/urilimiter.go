package middleware

import (
	"net/http"

	"gitlab.com/tachyons/pages-ssr/internal/httperrors"
)

// URILimiter serves a 414 page for request URIs longer than limit, 0 disables it
func URILimiter(limit int) Middleware {
	return func(handler http.Handler) http.Handler {
		if limit == 0 {
			return handler
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.RequestURI) > limit {
				httperrors.Serve414(w)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}
