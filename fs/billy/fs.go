// Package billy implements the fs.Filesystem interface on top of go-billy.
package billy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	parentfs "github.com/input-output-hk/s3upload/fs"
)

// FS implements the Filesystem interface using go-billy.
type FS struct {
	fs billy.Filesystem
}

// Open implements Filesystem.Open.
//
//nolint:ireturn // API returns the fs.File interface by design for flexibility.
func (b *FS) Open(name string) (parentfs.File, error) {
	f, err := b.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", name, err)
	}
	return &File{
		file: f,
		fs:   b,
	}, nil
}

// Stat implements Filesystem.Stat.
func (b *FS) Stat(name string) (os.FileInfo, error) {
	info, err := b.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("billy: stat %q: %w", name, err)
	}
	return info, nil
}

// Lstat implements Filesystem.Lstat.
func (b *FS) Lstat(name string) (os.FileInfo, error) {
	info, err := b.fs.Lstat(name)
	if err != nil {
		return nil, fmt.Errorf("billy: lstat %q: %w", name, err)
	}
	return info, nil
}

// Readlink implements Filesystem.Readlink.
func (b *FS) Readlink(name string) (string, error) {
	target, err := b.fs.Readlink(name)
	if err != nil {
		return "", fmt.Errorf("billy: readlink %q: %w", name, err)
	}
	return target, nil
}

// Walk implements Filesystem.Walk.
// Errors returned by walkFn are passed through unwrapped so callers can
// recognise their own sentinel values.
func (b *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	var fnErr error
	err := util.Walk(b.fs, root, func(path string, info os.FileInfo, err error) error {
		fnErr = walkFn(path, info, err)
		return fnErr
	})
	if err != nil {
		if fnErr != nil {
			return fnErr
		}
		return fmt.Errorf("billy: walk %q: %w", root, err)
	}
	return nil
}

// MkdirAll creates a directory and all missing parents.
func (b *FS) MkdirAll(path string, perm os.FileMode) error {
	if err := b.fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("billy: mkdirall %q: %w", path, err)
	}
	return nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (b *FS) WriteFile(filename string, data []byte, perm os.FileMode) error {
	if err := util.WriteFile(b.fs, filename, data, perm); err != nil {
		return fmt.Errorf("billy: writefile %q: %w", filename, err)
	}
	return nil
}

// Symlink creates link as a symbolic link to target.
func (b *FS) Symlink(target, link string) error {
	if err := b.fs.Symlink(target, link); err != nil {
		return fmt.Errorf("billy: symlink %q -> %q: %w", link, target, err)
	}
	return nil
}

// Remove removes the named file or empty directory.
func (b *FS) Remove(name string) error {
	if err := b.fs.Remove(name); err != nil {
		return fmt.Errorf("billy: remove %q: %w", name, err)
	}
	return nil
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // returning interface here is intentional to expose the adapter target.
func (b *FS) Raw() billy.Filesystem {
	return b.fs
}

// NewFS creates a new FS using the given go-billy filesystem.
func NewFS(fsys billy.Filesystem) *FS {
	return &FS{
		fs: fsys,
	}
}

// NewInMemoryFS creates a new in-memory filesystem.
func NewInMemoryFS() *FS {
	return &FS{
		fs: memfs.New(),
	}
}

// NewOSFS creates a new OS filesystem chrooted at path.
// Names passed to it are resolved relative to path.
func NewOSFS(path string) *FS {
	return &FS{
		fs: osfs.New(path),
	}
}

var _ parentfs.Filesystem = (*FS)(nil)
