package testhelpers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// Site is a temporary site root filled by tests
type Site struct {
	t    *testing.T
	Root string
}

// NewSite creates an empty site root removed at the end of the test
func NewSite(t *testing.T) *Site {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	return &Site{t: t, Root: root}
}

// Path returns the absolute path of the slash separated name
func (s *Site) Path(name string) string {
	return filepath.Join(s.Root, filepath.FromSlash(name))
}

// WriteFile writes content to name, creating parent directories
func (s *Site) WriteFile(name string, content []byte) {
	s.t.Helper()

	path := s.Path(name)
	require.NoError(s.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(s.t, os.WriteFile(path, content, 0644))
}

// WriteGzip writes the gzip compressed content to name.gz and returns the compressed bytes
func (s *Site) WriteGzip(name string, content []byte) []byte {
	s.t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, zw.Close())

	s.WriteFile(name+".gz", buf.Bytes())

	return buf.Bytes()
}

// WriteBrotli writes the brotli compressed content to name.br and returns the compressed bytes
func (s *Site) WriteBrotli(name string, content []byte) []byte {
	s.t.Helper()

	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, err := bw.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, bw.Close())

	s.WriteFile(name+".br", buf.Bytes())

	return buf.Bytes()
}

// Symlink creates name as a symlink to target
func (s *Site) Symlink(target, name string) {
	s.t.Helper()

	path := s.Path(name)
	require.NoError(s.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(s.t, os.Symlink(target, path))
}

// Mkdir creates the directory name
func (s *Site) Mkdir(name string) {
	s.t.Helper()

	require.NoError(s.t, os.MkdirAll(s.Path(name), 0755))
}

// Gunzip decompresses gzip data
func Gunzip(t *testing.T, data []byte) []byte {
	t.Helper()

	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer zr.Close()

	out, err := io.ReadAll(zr)
	require.NoError(t, err)

	return out
}

// Unbrotli decompresses brotli data
func Unbrotli(t *testing.T, data []byte) []byte {
	t.Helper()

	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	require.NoError(t, err)

	return out
}
