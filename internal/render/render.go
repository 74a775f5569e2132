// Package render defines the dynamic renderer requests fall back to when no
// static file answers them.
package render

//go:generate go run github.com/golang/mock/mockgen -destination mock/render_mock.go -package mock gitlab.com/tachyons/pages-ssr/internal/render Renderer

import (
	"net/http"
)

// Renderer produces a page for a request. It receives the request exactly as
// the client sent it and owns the response, including its status code.
// Implementations must be safe for concurrent use.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request)
}

// RendererFunc adapts a function to the Renderer interface
type RendererFunc func(w http.ResponseWriter, r *http.Request)

// Render calls f(w, r)
func (f RendererFunc) Render(w http.ResponseWriter, r *http.Request) {
	f(w, r)
}

// Options are the site wide settings a renderer is built with. They are
// immutable once the renderer exists.
type Options struct {
	// SiteRoot is the directory static files are served from
	SiteRoot string
	// SitePkgDir is the directory below SiteRoot holding the compiled bundle,
	// also the asset route prefix
	SitePkgDir string
	// OutputName is the base name of the bundle files
	OutputName string
	// SiteAddr is the public address of the site
	SiteAddr string
	// Env names the environment the site runs in
	Env string
}

// AssetPath returns the URL path of the bundle file with the given extension
func (o Options) AssetPath(ext string) string {
	return "/" + o.SitePkgDir + "/" + o.OutputName + ext
}
