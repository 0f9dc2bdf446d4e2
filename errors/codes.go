// Package errors provides the error types returned by the uploader.
// Every failure carries a Kind so callers can tell configuration problems,
// local filesystem problems and object-storage problems apart.
package errors

// Kind classifies an upload failure.
// Kinds are string-based for debuggability and natural log output.
type Kind string

const (
	// KindConfiguration indicates a required setting is absent or malformed.
	// It is raised before any filesystem or network access.
	KindConfiguration Kind = "CONFIGURATION_ERROR"

	// KindFilesystem indicates the source directory or a file beneath it
	// could not be enumerated, opened or read.
	KindFilesystem Kind = "FILESYSTEM_ERROR"

	// KindStorage indicates the object-storage service rejected or failed an upload.
	KindStorage Kind = "STORAGE_ERROR"

	// KindUnknown is used for errors that were never classified.
	KindUnknown Kind = "UNKNOWN"
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// KindOf reports the Kind of the first *Error found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
