package disk

import (
	"errors"
	"io/fs"
	"net/http"
	"syscall"

	"gitlab.com/tachyons/pages-ssr/internal/vfs"
)

var (
	// ErrNotFound is returned when no servable file matches the lookup path
	ErrNotFound = errors.New("static file not found")
	// ErrMethodNotAllowed is returned for lookups with a method other than GET or HEAD
	ErrMethodNotAllowed = errors.New("method not allowed for static files")
)

// lookupError keeps the cause of a NotFound outcome for logging
type lookupError struct {
	sentinel error
	cause    error
}

func (e *lookupError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *lookupError) Is(target error) bool {
	return target == e.sentinel
}

func (e *lookupError) Unwrap() error {
	return e.cause
}

func notFound(cause error) error {
	return &lookupError{sentinel: ErrNotFound, cause: cause}
}

// classify turns an error of the root while running op on name into a
// lookup outcome. Missing files and paths that cannot name a file are
// NotFound, anything else is a transport error.
func classify(op, name string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, syscall.ENOTDIR),
		errors.Is(err, syscall.ELOOP),
		errors.Is(err, syscall.ENAMETOOLONG):
		return notFound(err)
	default:
		return vfs.NewReadError(op, name, err)
	}
}

// StatusOf maps the result of Reader.Lookup to the HTTP status it stands for
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Outcome names the result of Reader.Lookup for metrics and logs
func Outcome(err error) string {
	switch StatusOf(err) {
	case http.StatusOK:
		return "served"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "error"
	}
}
