package vfs_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"gitlab.com/tachyons/pages-ssr/internal/vfs"
	"gitlab.com/tachyons/pages-ssr/internal/vfs/local"
	"gitlab.com/tachyons/pages-ssr/metrics"
)

func TestInstrumentedRootCountsOperations(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("hello"), 0644))

	localRoot, err := local.New(dir)
	require.NoError(t, err)

	root := vfs.Instrumented(localRoot, "instrumented-test", dir)
	ctx := context.Background()

	okLstat := metrics.VFSOperations.WithLabelValues("instrumented-test", "Lstat", "true")
	failedLstat := metrics.VFSOperations.WithLabelValues("instrumented-test", "Lstat", "false")
	okOpen := metrics.VFSOperations.WithLabelValues("instrumented-test", "Open", "true")

	_, err = root.Lstat(ctx, "/index.html")
	require.NoError(t, err)

	_, err = root.Lstat(ctx, "/missing.html")
	require.ErrorIs(t, err, fs.ErrNotExist)

	f, err := root.Open(ctx, "/index.html")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Equal(t, float64(1), testutil.ToFloat64(okLstat))
	require.Equal(t, float64(1), testutil.ToFloat64(failedLstat))
	require.Equal(t, float64(1), testutil.ToFloat64(okOpen))
}

func TestReadError(t *testing.T) {
	cause := errors.New("input/output error")
	err := fmt.Errorf("lookup: %w", vfs.NewReadError("open", "/app.js.br", cause))

	require.ErrorIs(t, err, cause)
	require.EqualError(t, err, "lookup: reading site root: open /app.js.br: input/output error")

	var readErr *vfs.ReadError
	require.True(t, errors.As(err, &readErr))
	require.Equal(t, "open", readErr.Op)
	require.Equal(t, "/app.js.br", readErr.Path)
}
