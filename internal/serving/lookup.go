package serving

import (
	"net/http"
	"net/url"
	"strings"
)

// LookupView derives the request a static lookup works on. It carries the
// method and context of r, only its Accept-Encoding values, no body and
// lookupPath without a query. r itself is never written to, so it can still
// be handed to the renderer as received.
func LookupView(r *http.Request, lookupPath string) *http.Request {
	view := r.Clone(r.Context())

	view.Header = make(http.Header, 1)
	if values := r.Header.Values("Accept-Encoding"); len(values) > 0 {
		view.Header["Accept-Encoding"] = append([]string(nil), values...)
	}

	view.Body = http.NoBody
	view.GetBody = nil
	view.ContentLength = 0
	view.TransferEncoding = nil
	view.Trailer = nil
	view.Form = nil
	view.PostForm = nil
	view.MultipartForm = nil

	view.URL.Path = lookupPath
	view.URL.RawPath = ""
	view.URL.RawQuery = ""
	view.URL.ForceQuery = false
	view.URL.Fragment = ""
	view.RequestURI = view.URL.RequestURI()

	return view
}

// AssetPath flattens an escaped URL path to "/" followed by its last segment.
// It reports false when there is no usable segment: a trailing slash, a dot
// segment, a segment that does not unescape or one that unescapes to
// something containing a slash.
func AssetPath(escapedPath string) (string, bool) {
	segment := escapedPath[strings.LastIndex(escapedPath, "/")+1:]

	name, err := url.PathUnescape(segment)
	if err != nil {
		return "", false
	}

	switch {
	case name == "", name == ".", name == "..":
		return "", false
	case strings.Contains(name, "/"):
		return "", false
	}

	return "/" + name, true
}
