package disk

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/golang/gddo/httputil"

	"gitlab.com/tachyons/pages-ssr/internal/vfs"
)

const indexFile = "index.html"

// precompressed variants in server preference order
var variants = []struct {
	encoding string
	suffix   string
}{
	{encoding: "br", suffix: ".br"},
	{encoding: "gzip", suffix: ".gz"},
}

// Reader looks up static files below a read-only root. It keeps no state
// between lookups and is safe for concurrent use.
type Reader struct {
	root   vfs.Root
	maxAge time.Duration
}

// NewReader returns a Reader for root. Served files are cacheable for maxAge,
// zero disables cache headers.
func NewReader(root vfs.Root, maxAge time.Duration) *Reader {
	return &Reader{root: root, maxAge: maxAge}
}

// Lookup resolves r.URL.Path to a file below the root and negotiates a
// precompressed variant from the Accept-Encoding header of r. The request is
// only read. On success the caller must serve or close the returned Asset.
func (reader *Reader) Lookup(ctx context.Context, r *http.Request) (*Asset, error) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return nil, ErrMethodNotAllowed
	}

	name, fi, err := reader.resolvePath(ctx, r.URL.Path)
	if err != nil {
		return nil, err
	}

	encoding, variantName, variantInfo, negotiable := reader.negotiate(ctx, r, name, fi)

	file, err := reader.root.Open(ctx, variantName)
	if err != nil {
		return nil, classify("open", variantName, err)
	}

	contentType, err := reader.detectContentType(ctx, name)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Asset{
		name:        name,
		encoding:    encoding,
		negotiable:  negotiable,
		contentType: contentType,
		size:        variantInfo.Size(),
		modTime:     variantInfo.ModTime(),
		maxAge:      reader.maxAge,
		file:        file,
	}, nil
}

// resolvePath converts a URL path to a regular file name below the root,
// converting requests for directories ending in a slash to their index.html.
func (reader *Reader) resolvePath(ctx context.Context, urlPath string) (string, os.FileInfo, error) {
	name := urlPath
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}

	if endsWithSlash(name) {
		name += indexFile
	}

	fi, err := reader.root.Lstat(ctx, name)
	if err != nil {
		return "", nil, classify("lstat", name, err)
	}

	if fi.IsDir() {
		return "", nil, notFound(&locationDirectoryError{FullPath: name})
	}

	// The file exists, but is not a supported type to serve. Perhaps a
	// symlink, a block special device or something else that may be a
	// security risk.
	if !fi.Mode().IsRegular() {
		return "", nil, notFound(fmt.Errorf("%s: is not a regular file", name))
	}

	return name, fi, nil
}

// negotiate picks the representation to serve among the plain file and its
// regular precompressed siblings.
func (reader *Reader) negotiate(ctx context.Context, r *http.Request, name string, fi os.FileInfo) (string, string, os.FileInfo, bool) {
	offers := make([]string, 0, len(variants)+1)
	found := make(map[string]os.FileInfo, len(variants))

	for _, v := range variants {
		// Ensure the precompressed file is not a symlink
		vfi, err := reader.root.Lstat(ctx, name+v.suffix)
		if err != nil || !vfi.Mode().IsRegular() {
			continue
		}

		offers = append(offers, v.encoding)
		found[v.encoding] = vfi
	}

	if len(offers) == 0 {
		return "", name, fi, false
	}

	offers = append(offers, "identity")

	accepted := httputil.NegotiateContentEncoding(r, offers)
	for _, v := range variants {
		if v.encoding == accepted {
			return v.encoding, name + v.suffix, found[v.encoding], true
		}
	}

	return "", name, fi, true
}

// Detect file's content-type either by extension or mime-sniffing.
// Implementation is adapted from Golang's `http.serveContent()`
// See https://github.com/golang/go/blob/902fc114272978a40d2e65c2510a18e870077559/src/net/http/fs.go#L194
func (reader *Reader) detectContentType(ctx context.Context, name string) (string, error) {
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType != "" {
		return contentType, nil
	}

	var buf [512]byte

	file, err := reader.root.Open(ctx, name)
	if err != nil {
		return "", classify("open", name, err)
	}

	defer file.Close()

	// Using `io.ReadFull()` because `file.Read()` may be chunked.
	// Ignoring errors because we don't care if the 512 bytes cannot be read.
	n, _ := io.ReadFull(file, buf[:])

	return http.DetectContentType(buf[:n]), nil
}

func endsWithSlash(path string) bool {
	return strings.HasSuffix(path, "/")
}

type locationDirectoryError struct {
	FullPath string
}

func (l *locationDirectoryError) Error() string {
	return fmt.Sprintf("%s: is a directory where a file is expected", l.FullPath)
}
