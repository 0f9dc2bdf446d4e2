package s3upload

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/input-output-hk/s3upload/errors"
	"github.com/input-output-hk/s3upload/fs/billy"
	"github.com/input-output-hk/s3upload/internal/operations/upload"
	"github.com/input-output-hk/s3upload/internal/s3api"
	"github.com/input-output-hk/s3upload/internal/validation"
	"github.com/input-output-hk/s3upload/s3types"
)

// Client uploads directory trees to an object-storage bucket.
// A Client is not safe for concurrent UploadDir calls that share an Output writer.
type Client struct {
	// storage is the backend every file is streamed to
	storage s3types.Storage

	// config holds the resolved client configuration
	config s3types.ClientConfig

	// logger receives structured diagnostics
	logger *slog.Logger

	// reporter writes confirmation lines
	reporter *reporter
}

// New creates a Client bound to an endpoint and credentials.
// No request is made here; bad credentials or an unreachable endpoint
// surface as storage errors on the first upload.
//
// Example:
//
//	client, err := s3upload.New(ctx,
//	    s3upload.WithEndpoint("http://localhost:9000"),
//	    s3upload.WithCredentials("minioadmin", "minioadmin"),
//	)
func New(ctx context.Context, opts ...s3types.Option) (*Client, error) {
	cfg := newClientConfig(opts...)

	if err := validation.ValidateEndpoint(cfg.Endpoint); err != nil {
		return nil, errors.NewConfigError("endpoint", err)
	}

	backend, err := s3types.ParseBackend(string(cfg.Backend))
	if err != nil {
		return nil, errors.NewConfigError("backend", fmt.Errorf("%w: %w", errors.ErrInvalidSetting, err))
	}

	var storage s3types.Storage
	switch backend {
	case s3types.BackendAWS:
		s3Client, err := newAWSClient(ctx, &cfg)
		if err != nil {
			return nil, err
		}
		storage = upload.New(s3Client, cfg.PartSize)
	case s3types.BackendMinio:
		minioClient, err := newMinioClient(&cfg)
		if err != nil {
			return nil, err
		}
		storage = upload.NewMinio(minioClient, cfg.PartSize)
	}

	return newClient(storage, cfg), nil
}

// NewWithClient creates a Client over a custom S3API implementation using
// the AWS transfer manager. This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...s3types.Option) *Client {
	cfg := newClientConfig(opts...)
	return newClient(upload.New(s3Client, cfg.PartSize), cfg)
}

// NewWithStorage creates a Client over any Storage implementation.
func NewWithStorage(storage s3types.Storage, opts ...s3types.Option) *Client {
	return newClient(storage, newClientConfig(opts...))
}

func newClientConfig(opts ...s3types.Option) s3types.ClientConfig {
	cfg := s3types.ClientConfig{
		Region:         s3types.DefaultRegion,
		ForcePathStyle: true,
		Backend:        s3types.BackendAWS,
		ErrorPolicy:    s3types.ErrorPolicyAbort,
		PartSize:       s3types.DefaultPartSize,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Region == "" {
		cfg.Region = s3types.DefaultRegion
	}
	if cfg.Backend == "" {
		cfg.Backend = s3types.BackendAWS
	}

	// Initialize filesystem - use provided one or default to the native OS filesystem
	if cfg.Filesystem == nil {
		cfg.Filesystem = billy.NewBaseOSFS()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	return cfg
}

func newClient(storage s3types.Storage, cfg s3types.ClientConfig) *Client {
	return &Client{
		storage:  storage,
		config:   cfg,
		logger:   cfg.Logger,
		reporter: newReporter(cfg.Output, cfg.Color),
	}
}

// envCABundle names the SDK's custom CA bundle variable.
const envCABundle = "AWS_CA_BUNDLE"

// awsHTTPClient returns the HTTP client AWS requests go through, or nil for
// the SDK default. Timeouts use the SDK's buildable client so a CA bundle
// from AWS_CA_BUNDLE or the shared config can still be added to it.
func awsHTTPClient(cfg *s3types.ClientConfig) aws.HTTPClient {
	if cfg.CustomHTTPClient != nil {
		return cfg.CustomHTTPClient
	}
	if cfg.Timeout > 0 {
		return awshttp.NewBuildableClient().WithTimeout(cfg.Timeout)
	}
	return nil
}

// newAWSClient builds an S3 client against cfg.Endpoint.
func newAWSClient(ctx context.Context, cfg *s3types.ClientConfig) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.Credentials.IsSet() {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Credentials.AccessKeyID,
				cfg.Credentials.SecretAccessKey,
				"",
			),
		))
	}

	if cfg.MaxRetries > 0 {
		loadOpts = append(loadOpts, awsconfig.WithRetryMaxAttempts(cfg.MaxRetries))
	}

	// the SDK can only add a CA bundle to its own buildable client
	if cfg.CustomHTTPClient != nil && os.Getenv(envCABundle) != "" {
		return nil, errors.NewConfigError("http client", fmt.Errorf(
			"%w: a custom HTTP client cannot be combined with %s", errors.ErrInvalidSetting, envCABundle))
	}

	if hc := awsHTTPClient(cfg); hc != nil {
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(hc))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewError("client initialization", errors.KindConfiguration, err)
	}

	// S3-compatible services commonly reject the SDK's default trailing checksums
	awsCfg.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	awsCfg.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// newMinioClient builds a MinIO client against the host of cfg.Endpoint.
// Any path component of the endpoint is ignored.
func newMinioClient(cfg *s3types.ClientConfig) (*minio.Client, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, errors.NewConfigError("endpoint", fmt.Errorf("%w: %w", errors.ErrInvalidSetting, err))
	}
	secure := strings.EqualFold(u.Scheme, "https")

	creds := miniocreds.NewEnvAWS()
	if cfg.Credentials.IsSet() {
		creds = miniocreds.NewStaticV4(cfg.Credentials.AccessKeyID, cfg.Credentials.SecretAccessKey, "")
	}

	lookup := minio.BucketLookupAuto
	if cfg.ForcePathStyle {
		lookup = minio.BucketLookupPath
	}

	opts := &minio.Options{
		Creds:        creds,
		Secure:       secure,
		Region:       cfg.Region,
		BucketLookup: lookup,
	}

	switch {
	case cfg.CustomHTTPClient != nil && cfg.CustomHTTPClient.Transport != nil:
		opts.Transport = cfg.CustomHTTPClient.Transport
	case cfg.Timeout > 0:
		transport, err := minio.DefaultTransport(secure)
		if err != nil {
			return nil, errors.NewError("client initialization", errors.KindConfiguration, err)
		}
		transport.ResponseHeaderTimeout = cfg.Timeout
		opts.Transport = transport
	}

	client, err := minio.New(u.Host, opts)
	if err != nil {
		return nil, errors.NewError("client initialization", errors.KindConfiguration, err)
	}

	return client, nil
}
