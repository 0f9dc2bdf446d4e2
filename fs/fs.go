// Package fs defines the filesystem abstraction the uploader reads from.
// Production code uses the native operating system; tests use an in-memory tree.
package fs

import (
	"os"
	"path/filepath"
)

// Filesystem is the read-only subset of filesystem operations needed to
// enumerate and read a local directory tree. Implementations may offer
// writers as well; the uploader never calls them.
type Filesystem interface {
	// Open opens the named file for reading.
	Open(name string) (File, error)

	// Stat returns file info, following symbolic links.
	Stat(name string) (os.FileInfo, error)

	// Lstat returns file info without following symbolic links.
	Lstat(name string) (os.FileInfo, error)

	// Readlink returns the target of the named symbolic link.
	Readlink(name string) (string, error)

	// Walk walks the tree rooted at root in lexical order, calling walkFn for
	// every entry including root. Symbolic links are reported, not followed.
	Walk(root string, walkFn filepath.WalkFunc) error
}
