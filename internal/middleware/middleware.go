// Package middleware holds the request filters wrapped around the router.
package middleware

import "net/http"

// Middleware wraps a handler with additional behaviour
type Middleware = func(http.Handler) http.Handler

// Chain wraps handler with the given middlewares, the first one being the outermost.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}
