package s3upload

import (
	"context"
	"time"

	"github.com/input-output-hk/s3upload/config"
	"github.com/input-output-hk/s3upload/errors"
	"github.com/input-output-hk/s3upload/internal/operations/upload"
	"github.com/input-output-hk/s3upload/internal/scanner"
	"github.com/input-output-hk/s3upload/internal/validation"
	"github.com/input-output-hk/s3upload/s3types"
)

// Upload validates cfg, connects to the configured endpoint and uploads
// cfg.SourceDir to cfg.Bucket. Configuration errors are returned before any
// filesystem or network access. Extra options are applied after the ones
// derived from cfg.
func Upload(ctx context.Context, cfg config.Config, opts ...s3types.Option) (*s3types.RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := s3types.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, errors.NewConfigError(config.EnvBackend, err)
	}

	clientOpts := []s3types.Option{
		WithEndpoint(cfg.Endpoint),
		WithRegion(cfg.Region),
		WithCredentials(cfg.Credentials.AccessKeyID, cfg.Credentials.SecretAccessKey),
		WithForcePathStyle(cfg.ForcePathStyle),
		WithBackend(backend),
		WithErrorPolicy(cfg.ErrorPolicy()),
		WithExcludePatterns(cfg.Excludes...),
		WithIncludePatterns(cfg.Includes...),
		WithContentTypeDetection(cfg.DetectContentType),
		WithDryRun(cfg.DryRun),
	}

	client, err := New(ctx, append(clientOpts, opts...)...)
	if err != nil {
		return nil, err
	}

	return client.UploadDir(ctx, cfg.SourceDir, cfg.Bucket)
}

// UploadDir uploads every regular file below sourceDir to bucket, one file
// at a time in walk order. Each object key is sourceDir as given joined with
// the file's path below it, with backslashes replaced by forward slashes. Placeholder files
// and excluded paths are skipped. After each successful upload a line
// "Uploaded <path> to S3 bucket <bucket>" is written to the client output.
//
// Under ErrorPolicyAbort the first failing file stops the run. Under
// ErrorPolicyContinue failures are recorded in the result and a joined
// error is returned once the walk finishes. An unusable sourceDir and a
// cancelled context always stop the run. The partial result is returned
// alongside any error.
//
// Returns:
//   - *RunResult: counts, bytes, per-file results and failures
//   - error: nil when every file was uploaded
//
// Errors:
//   - ErrConfiguration: bucket is empty
//   - ErrFilesystem: sourceDir is missing or not a directory, or a file cannot be read
//   - ErrStorage: the backend rejected an upload (see ErrBucketNotFound, ErrAccessDenied,
//     ErrInvalidCredentials, ErrConnection)
//
// Example:
//
//	result, err := client.UploadDir(ctx, "data", "my-bucket")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Uploaded %d files (%d bytes)\n", result.FilesUploaded, result.BytesUploaded)
func (c *Client) UploadDir(ctx context.Context, sourceDir, bucket string) (*s3types.RunResult, error) {
	startTime := time.Now()
	result := &s3types.RunResult{}

	if bucket == "" {
		return result, errors.NewConfigError("bucket", errors.ErrMissingSetting)
	}

	logger := c.logger.With("bucket", bucket, "source", sourceDir)
	logger.Debug("starting upload", "dry_run", c.config.DryRun, "error_policy", c.config.ErrorPolicy)

	var failures []error
	// record applies the error policy to a per-file failure
	record := func(task *s3types.UploadTask, err error) error {
		if ctx.Err() != nil || c.config.ErrorPolicy != s3types.ErrorPolicyContinue {
			return err
		}

		result.FilesFailed++
		failure := s3types.Failure{Err: err}
		if task != nil {
			failure.SourcePath = task.SourcePath
			failure.Key = task.Key
		} else {
			var e *errors.Error
			if errors.As(err, &e) {
				failure.SourcePath = e.Path
			}
		}
		result.Failures = append(result.Failures, failure)
		failures = append(failures, err)

		logger.Warn("upload failed, continuing", "path", failure.SourcePath, "error", err)
		return nil
	}

	s := scanner.NewScanner(c.config.Filesystem, c.config.IncludePatterns, c.config.ExcludePatterns)
	s.OnError(func(err error) error {
		return record(nil, err)
	})

	err := s.Walk(ctx, sourceDir,
		func(task *s3types.UploadTask) error {
			if c.config.DryRun {
				result.FilesPlanned++
				if err := c.reporter.wouldUpload(task.SourcePath, bucket); err != nil {
					logger.Warn("failed to write report line", "path", task.SourcePath, "error", err)
				}
				return nil
			}

			uploaded, err := c.uploadFile(ctx, bucket, task)
			if err != nil {
				return record(task, err)
			}

			result.FilesUploaded++
			result.BytesUploaded += uploaded.Size
			result.Uploads = append(result.Uploads, uploaded)
			// the object is stored; a lost console line does not fail the file
			if err := c.reporter.uploaded(task.SourcePath, bucket); err != nil {
				logger.Warn("failed to write report line", "path", task.SourcePath, "error", err)
			}
			logger.Debug("uploaded file", "path", task.SourcePath, "key", task.Key, "size", uploaded.Size)
			return nil
		},
		func(path string, reason scanner.SkipReason) {
			result.FilesSkipped++
			logger.Debug("skipping file", "path", path, "reason", reason)
		},
	)

	result.Duration = time.Since(startTime)

	if err != nil {
		logger.Error("upload stopped", "uploaded", result.FilesUploaded, "error", err)
		return result, err
	}

	logger.Info("upload finished",
		"uploaded", result.FilesUploaded,
		"planned", result.FilesPlanned,
		"skipped", result.FilesSkipped,
		"failed", result.FilesFailed,
		"bytes", result.BytesUploaded,
		"duration", result.Duration,
	)

	if len(failures) > 0 {
		return result, errors.Join(failures...)
	}

	return result, nil
}

// uploadFile streams one file to bucket. The file is opened immediately
// before the upload and closed as soon as it returns.
func (c *Client) uploadFile(ctx context.Context, bucket string, task *s3types.UploadTask) (*s3types.UploadResult, error) {
	if err := validation.ValidateObjectKey(task.Key); err != nil {
		return nil, errors.NewStorageError("upload", bucket, task.Key, err).WithPath(task.SourcePath)
	}

	openPath := task.OpenPath
	if openPath == "" {
		openPath = task.SourcePath
	}

	file, err := c.config.Filesystem.Open(openPath)
	if err != nil {
		return nil, errors.NewFilesystemError("open", task.SourcePath, err)
	}
	defer file.Close()

	size := task.Size
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	var contentType string
	if c.config.DetectContentType {
		contentType, err = upload.DetectContentType(file)
		if err != nil {
			return nil, errors.NewFilesystemError("read", task.SourcePath, err)
		}
	}

	result, err := c.storage.Upload(ctx, &s3types.UploadInput{
		Bucket:      bucket,
		Key:         task.Key,
		Body:        file,
		Size:        size,
		ContentType: contentType,
	})
	if err != nil {
		var e *errors.Error
		if !errors.As(err, &e) {
			e = errors.NewStorageError("upload", bucket, task.Key, err)
		}
		return nil, e.WithPath(task.SourcePath)
	}

	result.SourcePath = task.SourcePath
	return result, nil
}
