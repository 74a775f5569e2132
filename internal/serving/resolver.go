// Package serving resolves requests against the static site root and hands
// whatever it cannot serve to the dynamic renderer.
package serving

import (
	"fmt"
	"net/http"
	"strconv"

	"gitlab.com/tachyons/pages-ssr/internal/httperrors"
	"gitlab.com/tachyons/pages-ssr/internal/logging"
	"gitlab.com/tachyons/pages-ssr/internal/render"
	"gitlab.com/tachyons/pages-ssr/internal/serving/disk"
	"gitlab.com/tachyons/pages-ssr/metrics"
)

// Route names used in logs and metrics
const (
	RouteStatic   = "static"
	RouteFallback = "fallback"
	RouteAssets   = "assets"
	RouteCatchAll = "catch_all"
)

var errDegenerateAssetPath = fmt.Errorf("%w: asset path has no final segment", disk.ErrNotFound)

// Resolver is an http.Handler trying a static lookup before falling back to
// the renderer. A nil reader skips the lookup, a nil renderer makes the
// lookup outcome the response.
type Resolver struct {
	route         string
	reader        *disk.Reader
	renderer      render.Renderer
	rewriteAssets bool
}

// NewStatic serves static files only, anything else gets its error page
func NewStatic(reader *disk.Reader) *Resolver {
	return &Resolver{route: RouteStatic, reader: reader}
}

// NewFallback serves the request path as a static file or renders it
func NewFallback(reader *disk.Reader, renderer render.Renderer) *Resolver {
	return &Resolver{route: RouteFallback, reader: reader, renderer: renderer}
}

// NewAssets looks up the last path segment in the root directory and renders
// the original request when that fails. With a nil renderer the lookup is
// terminal.
func NewAssets(reader *disk.Reader, renderer render.Renderer) *Resolver {
	return &Resolver{route: RouteAssets, reader: reader, renderer: renderer, rewriteAssets: true}
}

// NewRenderOnly renders every request
func NewRenderOnly(renderer render.Renderer) *Resolver {
	return &Resolver{route: RouteCatchAll, renderer: renderer}
}

func (res *Resolver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logging.Annotate(r.Context(), "ssr_route", res.route)

	if res.reader == nil {
		res.render(w, r)
		return
	}

	lookupPath := r.URL.Path
	if res.rewriteAssets {
		rewritten, ok := AssetPath(r.URL.EscapedPath())
		metrics.AssetRewrites.WithLabelValues(strconv.FormatBool(!ok)).Inc()
		if !ok {
			logging.Annotate(r.Context(), "ssr_static_outcome", disk.Outcome(errDegenerateAssetPath))
			res.unserved(w, r, errDegenerateAssetPath)
			return
		}

		lookupPath = rewritten
	}

	view := LookupView(r, lookupPath)

	asset, err := res.reader.Lookup(view.Context(), view)
	outcome := disk.Outcome(err)
	logging.Annotate(r.Context(), "ssr_static_outcome", outcome)

	if err != nil {
		metrics.StaticLookups.WithLabelValues(outcome, "none").Inc()
		res.unserved(w, r, err)
		return
	}

	encoding := asset.ContentEncoding()
	if encoding == "" {
		encoding = "identity"
	}
	metrics.StaticLookups.WithLabelValues(outcome, encoding).Inc()

	asset.ServeHTTP(w, view)
}

// unserved answers a request whose static lookup failed with err
func (res *Resolver) unserved(w http.ResponseWriter, r *http.Request, err error) {
	status := disk.StatusOf(err)

	if res.renderer == nil {
		if status == http.StatusInternalServerError {
			httperrors.Serve500WithRequest(w, r, "static lookup failed", err)
			return
		}

		httperrors.ServeStatus(w, status)
		return
	}

	if status == http.StatusInternalServerError {
		logging.LogRequest(r).WithError(err).Warn("static lookup failed, rendering instead")
	}

	res.render(w, r)
}

func (res *Resolver) render(w http.ResponseWriter, r *http.Request) {
	if res.renderer == nil {
		httperrors.Serve404(w)
		return
	}

	metrics.RendererRequests.WithLabelValues(res.route).Inc()
	res.renderer.Render(w, r)
}
