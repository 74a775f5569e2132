package vfs

import (
	"context"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"gitlab.com/tachyons/pages-ssr/metrics"
)

// Root abstracts the read-only site directory static lookups are served from.
// Names are slash separated and relative to the root.
type Root interface {
	Lstat(ctx context.Context, name string) (os.FileInfo, error)
	Open(ctx context.Context, name string) (File, error)
}

// Instrumented wraps root so that every operation is counted and trace logged.
func Instrumented(root Root, name, path string) Root {
	return &instrumentedRoot{root: root, name: name, path: path}
}

type instrumentedRoot struct {
	root Root
	name string
	path string
}

func (i *instrumentedRoot) increment(operation string, err error) {
	metrics.VFSOperations.WithLabelValues(i.name, operation, strconv.FormatBool(err == nil)).Inc()
}

func (i *instrumentedRoot) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	fi, err := i.root.Lstat(ctx, name)
	i.increment("Lstat", err)

	log.WithField("vfs", i.name).
		WithField("path", i.path).
		WithField("name", name).
		WithError(err).
		Traceln("Lstat call")

	return fi, err
}

func (i *instrumentedRoot) Open(ctx context.Context, name string) (File, error) {
	f, err := i.root.Open(ctx, name)
	i.increment("Open", err)

	log.WithField("vfs", i.name).
		WithField("path", i.path).
		WithField("name", name).
		WithError(err).
		Traceln("Open call")

	return f, err
}
