package errors

import (
	"errors"
	"fmt"
)

// Error represents an uploader failure with context about the operation that failed.
// It wraps the underlying filesystem or SDK error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "walk", "open", "upload", "config")
	Op string

	// Kind classifies the failure
	Kind Kind

	// Bucket is the target bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Path is the local filesystem path (if applicable)
	Path string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("%s %s -> %s/%s: %v", e.Op, e.Path, e.Bucket, e.Key, e.Err)
	case e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind sentinel matching this error's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrFilesystem:
		return e.Kind == KindFilesystem
	case ErrStorage:
		return e.Kind == KindStorage
	}
	return false
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithPath adds local path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation, kind and underlying error.
func NewError(op string, kind Kind, err error) *Error {
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// NewConfigError creates a configuration error naming the offending setting.
func NewConfigError(setting string, err error) *Error {
	return &Error{
		Op:   "config",
		Kind: KindConfiguration,
		Err:  fmt.Errorf("%s: %w", setting, err),
	}
}

// NewFilesystemError creates a filesystem error for the given local path.
func NewFilesystemError(op, path string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: KindFilesystem,
		Path: path,
		Err:  err,
	}
}

// NewStorageError creates a storage error with bucket and key context.
func NewStorageError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Kind:   KindStorage,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Kind sentinels. Any *Error matches the sentinel of its Kind with errors.Is().
var (
	// ErrConfiguration matches every configuration error
	ErrConfiguration = errors.New("configuration error")

	// ErrFilesystem matches every filesystem error
	ErrFilesystem = errors.New("filesystem error")

	// ErrStorage matches every storage error
	ErrStorage = errors.New("storage error")
)

// Sentinel errors for common failure causes.
// These can be used with errors.Is() for error checking.
var (
	// ErrMissingSetting indicates a required setting was not provided
	ErrMissingSetting = errors.New("required setting is not set")

	// ErrInvalidSetting indicates a setting was provided but cannot be used
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrNotDirectory indicates the source path exists but is not a directory
	ErrNotDirectory = errors.New("not a directory")

	// ErrSymlinkLoop indicates a symlinked source path never resolves to a directory
	ErrSymlinkLoop = errors.New("too many levels of symbolic links")

	// ErrBucketNotFound indicates that the target bucket does not exist
	ErrBucketNotFound = errors.New("s3: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrInvalidCredentials indicates that the credentials are missing or invalid
	ErrInvalidCredentials = errors.New("s3: invalid credentials")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3: invalid object key")

	// ErrConnection indicates a connection error
	ErrConnection = errors.New("s3: connection error")

	// ErrTimeout indicates that the operation timed out
	ErrTimeout = errors.New("s3: operation timeout")
)

// Is is errors.Is, re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As, re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join is errors.Join, re-exported so callers need a single errors import.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsFilesystem checks if an error is a filesystem error.
func IsFilesystem(err error) bool {
	return errors.Is(err, ErrFilesystem)
}

// IsStorage checks if an error is a storage error.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}
