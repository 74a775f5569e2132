package shell

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/tachyons/pages-ssr/internal/render"
)

var testOptions = render.Options{
	SiteRoot:   "site",
	SitePkgDir: "pkg",
	OutputName: "app",
	SiteAddr:   "127.0.0.1:3000",
	Env:        "DEV",
}

func TestRenderDefaultShell(t *testing.T) {
	s, err := New(testOptions, "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/blog/hello", nil)
	s.Render(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	body := w.Body.String()
	require.Contains(t, body, `href="/pkg/app.css"`)
	require.Contains(t, body, `href="/pkg/app.js"`)
	require.Contains(t, body, `href="/pkg/app.wasm"`)
	require.Contains(t, body, `data-env="DEV"`)
	require.Contains(t, body, `data-path="/blog/hello"`)
}

func TestRenderEscapesPath(t *testing.T) {
	s, err := New(testOptions, "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.URL.Path = `/"><script>alert(1)</script>`
	s.Render(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "<script>alert(1)</script>")
}

func TestRenderHead(t *testing.T) {
	s, err := New(testOptions, "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.Render(w, httptest.NewRequest(http.MethodHead, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Body.String())
}

func TestNewWithTemplateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.html")
	require.NoError(t, os.WriteFile(path, []byte(`<main data-js="{{.JS}}">{{.SiteAddr}}</main>`), 0644))

	s, err := New(testOptions, path)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.Render(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, `<main data-js="/pkg/app.js">127.0.0.1:3000</main>`, w.Body.String())
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.html")
	require.NoError(t, os.WriteFile(invalid, []byte(`{{.JS`), 0644))

	tests := map[string]struct {
		path        string
		expectedErr string
	}{
		"missing template file": {
			path:        filepath.Join(dir, "missing.html"),
			expectedErr: "reading renderer template",
		},
		"invalid template": {
			path:        invalid,
			expectedErr: "parsing renderer template",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := New(testOptions, tt.path)
			require.Nil(t, s)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestRenderTemplateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shell.html")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Missing}}`), 0644))

	s, err := New(testOptions, path)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.Render(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
