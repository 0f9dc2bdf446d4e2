package s3upload

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/input-output-hk/s3upload/fs"
	"github.com/input-output-hk/s3upload/s3types"
)

// WithEndpoint sets the object-storage endpoint URL.
// This is required by New; S3-compatible services and LocalStack are reached this way.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithRegion sets the signing region. Default is us-east-1.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithCredentials sets a static access key pair.
// When either half is empty the backend's default credential chain is used.
func WithCredentials(accessKeyID, secretAccessKey string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Credentials = s3types.Credentials{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
		}
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for most S3-compatible services.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithBackend selects the storage client implementation. Default is BackendAWS.
func WithBackend(backend s3types.Backend) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Backend = backend
	}
}

// WithErrorPolicy sets what happens when a single file fails.
// Default is ErrorPolicyAbort.
func WithErrorPolicy(policy s3types.ErrorPolicy) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ErrorPolicy = policy
	}
}

// WithContinueOnError is shorthand for WithErrorPolicy(ErrorPolicyContinue) when enabled.
func WithContinueOnError(enabled bool) s3types.Option {
	if enabled {
		return WithErrorPolicy(s3types.ErrorPolicyContinue)
	}
	return WithErrorPolicy(s3types.ErrorPolicyAbort)
}

// WithExcludePatterns adds glob patterns for files that must not be uploaded.
// Patterns are matched against the slash-separated path relative to the
// source directory; a pattern without "/" matches the file name at any depth.
func WithExcludePatterns(patterns ...string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ExcludePatterns = append(c.ExcludePatterns, patterns...)
	}
}

// WithIncludePatterns restricts uploads to files matching at least one pattern.
func WithIncludePatterns(patterns ...string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.IncludePatterns = append(c.IncludePatterns, patterns...)
	}
}

// WithContentTypeDetection sniffs each file and sends the detected Content-Type.
// Default is off, in which case no Content-Type is sent.
func WithContentTypeDetection(enabled bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.DetectContentType = enabled
	}
}

// WithDryRun lists the files that would be uploaded without uploading them.
func WithDryRun(enabled bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.DryRun = enabled
	}
}

// WithPartSize sets the part size for multipart uploads.
// Default is 8MB. Values below the 5MB S3 minimum are raised to it.
func WithPartSize(partSize int64) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithMaxRetries sets the maximum number of attempts per request on the AWS backend.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout bounds each HTTP request. Default is no timeout (0).
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// It takes precedence over WithTimeout. On the AWS backend it cannot be
// combined with a CA bundle: New returns a configuration error when
// AWS_CA_BUNDLE is set, and the SDK rejects a ca_bundle from the shared config.
func WithCustomHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets the filesystem files are read from.
// If not specified, defaults to the native OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the structured logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Logger = logger
	}
}

// WithOutput sets where confirmation lines are written. Default is os.Stdout.
func WithOutput(w io.Writer) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Output = w
	}
}

// WithColor enables coloured confirmation lines.
func WithColor(enabled bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Color = enabled
	}
}
