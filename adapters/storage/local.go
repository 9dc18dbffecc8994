// Package storage provides StorageAdapter implementations.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/utils"
)

// writeChunk bounds single write calls on large frames.
const writeChunk = 1 << 20

// Local stores files on the local filesystem. Keys resolve relative to the
// root directory, or as given when the root is empty.
type Local struct {
	rootDir     string
	permissions os.FileMode
}

// NewLocal creates a Local storage adapter rooted at dir. An empty dir leaves
// key paths untouched so command line arguments work as typed.
func NewLocal(dir string, perm os.FileMode) (*Local, error) {
	if perm == 0 {
		perm = 0o644
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryIO, "local.mkdir", err)
		}
	}
	return &Local{rootDir: dir, permissions: perm}, nil
}

func (l *Local) absPath(key core.StorageKey) string {
	if l.rootDir == "" && key.Bucket == "" {
		return filepath.Clean(key.Path)
	}
	// Bucket maps to a subdirectory; Path is the filename.
	return filepath.Join(l.rootDir, filepath.Clean(key.Bucket), filepath.Clean(key.Path))
}

// Put writes r to key, truncating any previous content to the new size. A
// failed write leaves the partial file in place.
func (l *Local) Put(ctx context.Context, key core.StorageKey, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryPipeline, "local.put", err)
	}

	path := l.absPath(key)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.Wrap(apperrors.CategoryIO, "local.put.mkdir", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, l.permissions)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "local.put.open", err)
	}

	w := &utils.ChunkedWriter{W: f, ChunkSize: writeChunk}
	if _, err = io.Copy(w, r); err != nil {
		f.Close()
		return apperrors.Wrap(apperrors.CategoryIO, "local.put.write", err)
	}
	if err := f.Close(); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "local.put.close", err)
	}
	return nil
}

func (l *Local) Get(ctx context.Context, key core.StorageKey) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, "local.get", err)
	}
	f, err := os.Open(l.absPath(key))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "local.get.open", err)
	}
	return f, nil
}

func (l *Local) Delete(ctx context.Context, key core.StorageKey) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryPipeline, "local.delete", err)
	}
	if err := os.Remove(l.absPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.Wrap(apperrors.CategoryIO, "local.delete", err)
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, key core.StorageKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryPipeline, "local.exists", err)
	}
	_, err := os.Stat(l.absPath(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.CategoryIO, "local.exists.stat", err)
}
