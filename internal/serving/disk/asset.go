package disk

import (
	"net/http"
	"strconv"
	"time"

	"gitlab.com/tachyons/pages-ssr/internal/vfs"
	"gitlab.com/tachyons/pages-ssr/metrics"
)

// Asset is an open static file ready to be written as a 200 response
type Asset struct {
	name        string
	encoding    string
	negotiable  bool
	contentType string
	size        int64
	modTime     time.Time
	maxAge      time.Duration
	file        vfs.File
}

// Name is the path of the plain file below the root
func (a *Asset) Name() string {
	return a.name
}

// ContentEncoding is the encoding of the served bytes, empty for the plain file
func (a *Asset) ContentEncoding() string {
	return a.encoding
}

// Close releases the file without serving it
func (a *Asset) Close() error {
	return a.file.Close()
}

// ServeHTTP writes the asset and closes it. r is the lookup view the asset
// was resolved from.
func (a *Asset) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer a.file.Close()

	header := w.Header()

	if a.negotiable {
		header.Add("Vary", "Accept-Encoding")
	}

	if a.maxAge > 0 {
		header.Set("Cache-Control", "max-age="+strconv.FormatInt(int64(a.maxAge/time.Second), 10))
		header.Set("Expires", time.Now().Add(a.maxAge).UTC().Format(http.TimeFormat))
	}

	header.Set("Content-Type", a.contentType)

	if a.encoding != "" {
		// http.ServeContent leaves Content-Length unset for encoded bodies
		header.Set("Content-Encoding", a.encoding)
		header.Set("Content-Length", strconv.FormatInt(a.size, 10))
	}

	metrics.ServingFileSize.Observe(float64(a.size))

	http.ServeContent(w, r, a.name, a.modTime, a.file)
}
