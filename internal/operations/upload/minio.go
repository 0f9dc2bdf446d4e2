package upload

import (
	"context"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/input-output-hk/s3upload/errors"
	"github.com/input-output-hk/s3upload/s3types"
)

// minimum part size accepted by S3-compatible multipart uploads
const minioMinPartSize = 5 * 1024 * 1024

// MinioUploader uploads objects through the MinIO client.
type MinioUploader struct {
	client   *minio.Client
	partSize uint64
}

// NewMinio creates a new MinioUploader over an existing client.
func NewMinio(client *minio.Client, partSize int64) *MinioUploader {
	if partSize <= 0 {
		partSize = s3types.DefaultPartSize
	}
	if partSize < minioMinPartSize {
		partSize = minioMinPartSize
	}

	return &MinioUploader{
		client:   client,
		partSize: uint64(partSize),
	}
}

// Upload streams input.Body with PutObject. A negative size lets the client
// buffer one part at a time until the body is exhausted.
func (m *MinioUploader) Upload(ctx context.Context, input *s3types.UploadInput) (*s3types.UploadResult, error) {
	startTime := time.Now()

	opts := minio.PutObjectOptions{
		ContentType: input.ContentType,
		PartSize:    m.partSize,
		NumThreads:  1,
	}

	info, err := m.client.PutObject(ctx, input.Bucket, input.Key, input.Body, input.Size, opts)
	if err != nil {
		return nil, errors.NewStorageError("upload", input.Bucket, input.Key, classifyMinio(err))
	}

	result := &s3types.UploadResult{
		Bucket:    input.Bucket,
		Key:       input.Key,
		Size:      info.Size,
		ETag:      info.ETag,
		VersionID: info.VersionID,
		Location:  info.Location,
		Duration:  time.Since(startTime),
	}

	return result, nil
}

// classifyMinio maps a MinIO client error onto the shared sentinels.
func classifyMinio(err error) error {
	return errors.Classify(err, string(minio.ToErrorResponse(err).Code))
}

var _ s3types.Storage = (*MinioUploader)(nil)
