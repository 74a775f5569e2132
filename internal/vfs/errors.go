package vfs

import "fmt"

// ReadError is a failure of the storage behind the site root while looking
// up Path, as opposed to a missing file. Lookups answer it with a 500 or
// hand the request to the renderer.
type ReadError struct {
	Op   string
	Path string
	Err  error
}

func NewReadError(op, path string, err error) *ReadError {
	return &ReadError{Op: op, Path: path, Err: err}
}

func (r *ReadError) Error() string {
	return fmt.Sprintf("reading site root: %s %s: %v", r.Op, r.Path, r.Err)
}

func (r *ReadError) Unwrap() error {
	return r.Err
}
