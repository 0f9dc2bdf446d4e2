// Package s3types provides shared type definitions for the uploader.
package s3types

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/input-output-hk/s3upload/fs"
)

// PlaceholderSuffix marks files that exist only to keep an otherwise empty
// directory in version control. Such files are never uploaded.
const PlaceholderSuffix = ".gitkeep"

// DefaultRegion is used when no region is configured. S3-compatible services
// generally ignore it, but request signing requires one.
const DefaultRegion = "us-east-1"

// DefaultPartSize is the multipart part size used for large files.
const DefaultPartSize int64 = 8 * 1024 * 1024

// Backend selects the object-storage client implementation.
type Backend string

// Supported backends
const (
	// BackendAWS uses the AWS SDK for Go v2 transfer manager
	BackendAWS Backend = "aws"

	// BackendMinio uses the MinIO Go client
	BackendMinio Backend = "minio"
)

// ParseBackend parses a backend name. The empty string selects BackendAWS.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendAWS:
		return BackendAWS, nil
	case BackendMinio:
		return BackendMinio, nil
	}
	return "", fmt.Errorf("unknown backend %q (want %q or %q)", s, BackendAWS, BackendMinio)
}

// ErrorPolicy decides what happens when a single file fails to upload.
type ErrorPolicy string

// Supported error policies
const (
	// ErrorPolicyAbort stops the run at the first failing file (default)
	ErrorPolicyAbort ErrorPolicy = "abort"

	// ErrorPolicyContinue records the failure and moves on to the next file
	ErrorPolicyContinue ErrorPolicy = "continue"
)

// Credentials holds a static access key pair.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// IsSet reports whether both halves of the key pair are present.
func (c Credentials) IsSet() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// ClientConfig holds the configuration for the upload client.
type ClientConfig struct {
	// Endpoint is the object-storage service URL
	Endpoint string

	// Region is the signing region
	Region string

	// Credentials are the static credentials; when unset the backend's
	// default credential chain is used and fails at first use if empty
	Credentials Credentials

	// ForcePathStyle selects path-style bucket addressing
	ForcePathStyle bool

	// Backend selects the storage client implementation
	Backend Backend

	// ErrorPolicy decides whether a failing file aborts the run
	ErrorPolicy ErrorPolicy

	// IncludePatterns restrict uploads to matching files when non-empty
	IncludePatterns []string

	// ExcludePatterns are additional glob patterns to skip, matched against
	// the slash-separated path relative to the source directory
	ExcludePatterns []string

	// DetectContentType sniffs each file and sets Content-Type on upload
	DetectContentType bool

	// DryRun enumerates files and reports them without uploading
	DryRun bool

	// PartSize is the multipart part size for large files
	PartSize int64

	// MaxRetries caps request attempts on the AWS backend; zero keeps the SDK default
	MaxRetries int

	// Timeout bounds each HTTP request; zero means no timeout
	Timeout time.Duration

	// CustomHTTPClient replaces the backend's HTTP client
	CustomHTTPClient *http.Client

	// Filesystem is the filesystem files are read from
	Filesystem fs.Filesystem

	// Logger receives structured diagnostics
	Logger *slog.Logger

	// Output receives one confirmation line per uploaded file
	Output io.Writer

	// Color enables coloured confirmation lines
	Color bool
}

// Option configures a ClientConfig.
type Option func(*ClientConfig)

// UploadInput describes a single object upload.
type UploadInput struct {
	// Bucket is the target bucket
	Bucket string

	// Key is the object key
	Key string

	// Body streams the object content
	Body io.Reader

	// Size is the content length in bytes, or -1 when unknown
	Size int64

	// ContentType is sent only when non-empty
	ContentType string
}

// Storage is the object-storage capability the uploader depends on.
// Implementations must not retain Body after Upload returns.
type Storage interface {
	// Upload streams the input body to bucket/key.
	Upload(ctx context.Context, input *UploadInput) (*UploadResult, error)
}

// UploadTask is a file discovered during the walk, paired with its storage key.
type UploadTask struct {
	// SourcePath is the source directory as given joined with the file's
	// path below it
	SourcePath string

	// OpenPath is the path the filesystem reads the file from. It differs
	// from SourcePath only below a symlinked source directory.
	OpenPath string

	// Key is the storage key derived from SourcePath
	Key string

	// Size is the file size at enumeration time
	Size int64
}

// UploadResult contains the outcome of a single upload.
type UploadResult struct {
	// SourcePath is the local file that was uploaded
	SourcePath string

	// Bucket is the bucket the object was written to
	Bucket string

	// Key is the object key
	Key string

	// Size is the number of bytes uploaded
	Size int64

	// ETag is the entity tag returned by the service
	ETag string

	// VersionID is the object version, when versioning is enabled
	VersionID string

	// Location is the object URL, when the backend reports one
	Location string

	// Duration is how long the upload took
	Duration time.Duration
}

// Failure records a file that could not be uploaded.
type Failure struct {
	// SourcePath is the local file
	SourcePath string

	// Key is the storage key it would have been written to
	Key string

	// Err is the classified error
	Err error
}

// RunResult summarises one pass over a directory tree.
type RunResult struct {
	// FilesUploaded is the number of files successfully uploaded
	FilesUploaded int

	// FilesPlanned is the number of files reported by a dry run
	FilesPlanned int

	// FilesSkipped is the number of placeholder or excluded files
	FilesSkipped int

	// FilesFailed is the number of files that failed under ErrorPolicyContinue
	FilesFailed int

	// BytesUploaded is the total size of all uploaded files
	BytesUploaded int64

	// Duration is the wall time of the run
	Duration time.Duration

	// Uploads lists every successful upload in walk order
	Uploads []*UploadResult

	// Failures lists every recorded failure in walk order
	Failures []Failure
}
