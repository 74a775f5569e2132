package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"gitlab.com/tachyons/pages-ssr/internal/vfs"
)

var errNotDirectory = errors.New("path needs to be a directory")

type invalidPathError struct {
	rootPath      string
	requestedPath string
}

func (i *invalidPathError) Error() string {
	return fmt.Sprintf("%q should be in %q", i.requestedPath, i.rootPath)
}

// Is makes a path outside of the root indistinguishable from a missing file.
func (i *invalidPathError) Is(target error) bool {
	return target == fs.ErrNotExist
}

type symlinkPathError struct {
	rootPath      string
	requestedPath string
}

func (s *symlinkPathError) Error() string {
	return fmt.Sprintf("%q goes through a symlink below %q", s.requestedPath, s.rootPath)
}

func (s *symlinkPathError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// Root serves files below a directory on the local disk.
type Root struct {
	rootPath string
}

// New returns a Root for path. Symlinks in path itself are resolved once,
// anything below it is never followed.
func New(path string) (*Root, error) {
	rootPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	rootPath, err = filepath.EvalSymlinks(rootPath)
	if err != nil {
		return nil, fmt.Errorf("could not evaluate symlinks: %w", err)
	}

	fi, err := os.Lstat(rootPath)
	if err != nil {
		return nil, err
	}

	if !fi.Mode().IsDir() {
		return nil, errNotDirectory
	}

	return &Root{rootPath: rootPath}, nil
}

// Path returns the absolute, symlink free path of the root
func (r *Root) Path() string {
	return r.rootPath
}

func (r *Root) validatePath(path string) (string, string, error) {
	fullPath := filepath.Join(r.rootPath, filepath.FromSlash(path))

	if r.rootPath == fullPath {
		return fullPath, "", nil
	}

	vfsPath := strings.TrimPrefix(fullPath, r.rootPath+string(filepath.Separator))

	// The requested path resolved to somewhere outside of the `r.rootPath` directory
	if fullPath == vfsPath {
		return "", "", &invalidPathError{rootPath: r.rootPath, requestedPath: fullPath}
	}

	if err := r.checkParents(fullPath); err != nil {
		return "", "", err
	}

	return fullPath, vfsPath, nil
}

// checkParents rejects paths whose directories below the root contain a
// symlink. The root is symlink free, so the parent of fullPath must resolve
// to itself. The last component is left to Lstat and O_NOFOLLOW.
func (r *Root) checkParents(fullPath string) error {
	parent := filepath.Dir(fullPath)
	if parent == r.rootPath {
		return nil
	}

	resolved, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return err
	}

	if resolved != parent {
		return &symlinkPathError{rootPath: r.rootPath, requestedPath: fullPath}
	}

	return nil
}

func (r *Root) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	fullPath, _, err := r.validatePath(name)
	if err != nil {
		return nil, err
	}

	return os.Lstat(fullPath)
}

func (r *Root) Open(ctx context.Context, name string) (vfs.File, error) {
	fullPath, _, err := r.validatePath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(fullPath, os.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, err
	}

	return f, nil
}
