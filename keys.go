package s3upload

import "github.com/input-output-hk/s3upload/internal/scanner"

// StorageKey returns the object key used for a local file path: the path
// with every backslash replaced by a forward slash. No other normalisation
// is applied, so absolute and relative paths keep their shape.
func StorageKey(path string) string {
	return scanner.StorageKey(path)
}

// IsPlaceholder reports whether a file name marks an otherwise empty
// directory and is therefore never uploaded.
func IsPlaceholder(name string) bool {
	return scanner.IsPlaceholder(name)
}
