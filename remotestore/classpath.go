package remotestore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
)

// ClasspathSource serves a mapping document packaged alongside the
// binary (the module's default "classpath" source, mirroring a JVM
// service's bundled resource file). It never exposes an entity tag, so
// the Reload Controller always falls back to content hashing for this
// source.
type ClasspathSource struct {
	fsys fs.FS
	path string
}

// NewClasspathSource constructs a ClasspathSource reading path out of
// fsys (typically an embed.FS baked into the binary).
func NewClasspathSource(fsys fs.FS, path string) *ClasspathSource {
	return &ClasspathSource{fsys: fsys, path: path}
}

// NewEmbeddedSource is a convenience constructor for the common case of
// an embed.FS.
func NewEmbeddedSource(fsys embed.FS, path string) *ClasspathSource {
	return NewClasspathSource(fsys, path)
}

func (c *ClasspathSource) Stat(ctx context.Context) (Metadata, error) {
	if _, err := fs.Stat(c.fsys, c.path); err != nil {
		return Metadata{}, fmt.Errorf("remotestore: classpath stat %s: %w", c.path, err)
	}
	return Metadata{}, nil
}

func (c *ClasspathSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := fs.ReadFile(c.fsys, c.path)
	if err != nil {
		return nil, fmt.Errorf("remotestore: classpath read %s: %w", c.path, err)
	}
	return data, nil
}

func (c *ClasspathSource) Close() error { return nil }
