// Package shell renders the HTML application shell in process. The page only
// references the compiled bundle, the client side application takes over once
// it has loaded.
package shell

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"

	"gitlab.com/tachyons/pages-ssr/internal/httperrors"
	"gitlab.com/tachyons/pages-ssr/internal/render"
)

const defaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="stylesheet" href="{{.CSS}}">
  <link rel="modulepreload" href="{{.JS}}">
  <link rel="preload" href="{{.WASM}}" as="fetch" type="application/wasm" crossorigin>
</head>
<body data-env="{{.Env}}" data-path="{{.Path}}">
  <script type="module">
    import init from '{{.JS}}';
    init('{{.WASM}}');
  </script>
</body>
</html>
`

// Page is the data a shell template is executed with
type Page struct {
	JS       string
	WASM     string
	CSS      string
	Env      string
	SiteAddr string
	Path     string
}

// Renderer writes the application shell for every request it gets
type Renderer struct {
	opts render.Options
	tmpl *template.Template
}

// New parses the template at templatePath, or the built-in shell when it is empty
func New(opts render.Options, templatePath string) (*Renderer, error) {
	text := defaultTemplate
	if templatePath != "" {
		b, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("reading renderer template: %w", err)
		}
		text = string(b)
	}

	tmpl, err := template.New("shell").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing renderer template: %w", err)
	}

	return &Renderer{opts: opts, tmpl: tmpl}, nil
}

// Render executes the shell template for r. The request body is left unread.
func (s *Renderer) Render(w http.ResponseWriter, r *http.Request) {
	page := Page{
		JS:       s.opts.AssetPath(".js"),
		WASM:     s.opts.AssetPath(".wasm"),
		CSS:      s.opts.AssetPath(".css"),
		Env:      s.opts.Env,
		SiteAddr: s.opts.SiteAddr,
		Path:     r.URL.Path,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, page); err != nil {
		httperrors.Serve500WithRequest(w, r, "failed to render application shell", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	// nolint: errcheck
	buf.WriteTo(w)
}
