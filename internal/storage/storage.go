package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// Storage is the single seam between the avatar pipeline and durable blob
// storage. Put persists the content under name and returns the public
// reference clients use to fetch it.
type Storage interface {
	Put(ctx context.Context, name string, r io.Reader) (string, error)
}

// Disk stores blobs on the local filesystem under root and serves them at
// publicPrefix via the static file route.
type Disk struct {
	root         string
	publicPrefix string
}

// NewDisk creates a local-disk storage rooted at dir.
func NewDisk(dir, publicPrefix string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Disk{root: dir, publicPrefix: publicPrefix}, nil
}

// Put writes to a temporary file in the target directory and renames it
// into place, so a partially written avatar is never visible under its
// final name. The temp file is removed on every failure path.
func (d *Disk) Put(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(d.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	dst := filepath.Join(d.root, filepath.Base(name))
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("publish blob: %w", err)
	}

	return path.Join("/", d.publicPrefix, filepath.Base(name)), nil
}
