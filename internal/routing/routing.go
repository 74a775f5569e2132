// Package routing maps request paths to the resolver that answers them.
package routing

import (
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"
)

// Handlers are the entry points requests are routed to
type Handlers struct {
	// Assets answers everything below the asset prefix
	Assets http.Handler
	// Fallback answers paths that may name a static file
	Fallback http.Handler
	// CatchAll answers every other path
	CatchAll http.Handler
}

// NewRouter routes /<pkgDir>/... to the asset handler, paths ending in a
// slash or naming a file with an extension to the fallback handler, and
// anything else to the catch-all handler. Paths are not cleaned, handlers
// see them as the client sent them.
func NewRouter(pkgDir string, h Handlers) *mux.Router {
	router := mux.NewRouter().SkipClean(true)

	router.PathPrefix("/" + pkgDir + "/").Handler(h.Assets)
	router.MatcherFunc(staticEligible).Handler(h.Fallback)
	router.NotFoundHandler = h.CatchAll
	router.MethodNotAllowedHandler = h.CatchAll

	return router
}

func staticEligible(r *http.Request, _ *mux.RouteMatch) bool {
	p := r.URL.Path
	if strings.HasSuffix(p, "/") {
		return true
	}

	return path.Ext(p[strings.LastIndex(p, "/")+1:]) != ""
}
