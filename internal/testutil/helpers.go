// Package testutil provides test helper functions.
package testutil

import (
	"os"
	"path"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TreeWriter is the writable side of a test filesystem.
type TreeWriter interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
}

// WriteTree creates every file in files (path -> content) on fsys.
// Paths use forward slashes; parent directories are created as needed.
func WriteTree(t *testing.T, fsys TreeWriter, files map[string]string) {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		require.NoError(t, fsys.MkdirAll(path.Dir(name), 0o755))
		require.NoError(t, fsys.WriteFile(name, []byte(files[name]), 0o644))
	}
}

// GenerateTestBucketName generates a valid, unique test bucket name.
// Bucket names must be DNS-compliant and at most 63 characters.
func GenerateTestBucketName(prefix string) string {
	name := strings.ToLower(prefix + "-" + uuid.NewString())
	name = strings.ReplaceAll(name, "_", "-")
	if len(name) > 63 {
		name = name[:63]
	}
	return strings.TrimRight(name, "-")
}
