// Package proxy renders pages by forwarding requests to an upstream rendering
// server.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/tomasen/realip"

	"gitlab.com/tachyons/pages-ssr/internal/httperrors"
	"gitlab.com/tachyons/pages-ssr/internal/httptransport"
	"gitlab.com/tachyons/pages-ssr/internal/render"
	"gitlab.com/tachyons/pages-ssr/metrics"
)

var errUnsupportedScheme = errors.New("renderer URL must use http or https")

// Renderer is a reverse proxy to the rendering server
type Renderer struct {
	opts     render.Options
	upstream *url.URL
	proxy    *httputil.ReverseProxy
}

// New builds a renderer forwarding to rawURL. Upstream responses must start
// within timeout.
func New(opts render.Options, rawURL string, timeout time.Duration) (*Renderer, error) {
	upstream, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing renderer URL: %w", err)
	}

	if upstream.Scheme != "http" && upstream.Scheme != "https" {
		return nil, errUnsupportedScheme
	}

	transport := httptransport.NewMeteredRoundTripper(
		httptransport.NewTransport(),
		"renderer",
		metrics.RendererUpstreamTrace,
		metrics.RendererUpstreamDuration,
		metrics.RendererUpstreamRequests,
		timeout,
	)

	return newRenderer(opts, upstream, transport), nil
}

func newRenderer(opts render.Options, upstream *url.URL, transport http.RoundTripper) *Renderer {
	rr := &Renderer{opts: opts, upstream: upstream}

	rr.proxy = &httputil.ReverseProxy{
		Director:     rr.direct,
		Transport:    transport,
		ErrorHandler: rr.handleError,
		// flush streamed pages as they arrive
		FlushInterval: -1,
	}

	return rr
}

// Render forwards r with its path, query, headers and body untouched
func (rr *Renderer) Render(w http.ResponseWriter, r *http.Request) {
	rr.proxy.ServeHTTP(w, r)
}

func (rr *Renderer) direct(r *http.Request) {
	r.URL.Scheme = rr.upstream.Scheme
	r.URL.Host = rr.upstream.Host
	if rr.upstream.User != nil {
		r.URL.User = rr.upstream.User
	}

	// keep the client Host so the renderer builds correct absolute links
	if r.Header.Get("X-Forwarded-Host") == "" && r.Host != "" {
		r.Header.Set("X-Forwarded-Host", r.Host)
	}

	r.Header.Set("X-Real-Ip", realip.FromRequest(r))

	if rr.opts.Env != "" {
		r.Header.Set("X-Site-Env", rr.opts.Env)
	}

	if _, ok := r.Header["User-Agent"]; !ok {
		// explicitly disable User-Agent so it's not set to default value
		r.Header.Set("User-Agent", "")
	}
}

func (rr *Renderer) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// client went away, nothing left to answer
		return
	}

	httperrors.Serve502WithRequest(w, r, "renderer upstream failed", err)
}
