// Package storage is the filesystem collaborator of the receiver: open for
// write at offset, delete-if-exists and rename, all scoped to one root directory.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMissingPath = errors.New("storage: missing path")
	ErrAbsolute    = errors.New("storage: absolute path not allowed")
	ErrEscapesRoot = errors.New("storage: path escapes root")
)

// File is an open write handle.
type File interface {
	io.WriterAt
	Sync() error
	Close() error
}

// Storage is the set of operations the transfer pipeline needs.
// Remove must report a missing path with an error matching fs.ErrNotExist.
type Storage interface {
	OpenWrite(name string, truncate bool) (File, error)
	Remove(name string) error
	Rename(from, to string) error
}

// Dir is a Storage rooted at a local directory.
type Dir struct {
	root string
}

// NewDir constructs a Dir rooted at root, defaulting to the working directory.
func NewDir(root string) Dir {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		resolved = "."
	}
	return Dir{root: resolved}
}

func (d Dir) Root() string {
	return d.root
}

func (d Dir) OpenWrite(name string, truncate bool) (File, error) {
	p, err := d.resolvePath(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, err
	}
	flags := os.O_CREATE | os.O_WRONLY
	if truncate {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(p, flags, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d Dir) Remove(name string) error {
	p, err := d.resolvePath(name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (d Dir) Rename(from, to string) error {
	src, err := d.resolvePath(from)
	if err != nil {
		return err
	}
	dst, err := d.resolvePath(to)
	if err != nil {
		return err
	}
	return os.Rename(src, dst)
}

// Stat is used by callers reporting on the final artifact.
func (d Dir) Stat(name string) (fs.FileInfo, error) {
	p, err := d.resolvePath(name)
	if err != nil {
		return nil, err
	}
	return os.Stat(p)
}

func (d Dir) resolvePath(name string) (string, error) {
	rel := strings.TrimSpace(name)
	if rel == "" {
		return "", ErrMissingPath
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrAbsolute, rel)
	}
	root, err := filepath.Abs(d.root)
	if err != nil {
		return "", err
	}
	p := filepath.Clean(filepath.Join(root, rel))
	if !isWithin(p, root) {
		return "", fmt.Errorf("%w: %s", ErrEscapesRoot, rel)
	}
	return p, nil
}

func isWithin(path string, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}
