package upload

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/s3upload/errors"
	"github.com/input-output-hk/s3upload/internal/s3api"
	"github.com/input-output-hk/s3upload/s3types"
)

// Uploader uploads objects through the AWS SDK transfer manager.
type Uploader struct {
	s3Client s3api.S3API
	manager  *manager.Uploader
}

// New creates a new Uploader instance.
// Parts are uploaded one at a time; partSize below the S3 minimum is raised to it.
func New(s3Client s3api.S3API, partSize int64) *Uploader {
	if partSize <= 0 {
		partSize = s3types.DefaultPartSize
	}
	if partSize < manager.MinUploadPartSize {
		partSize = manager.MinUploadPartSize
	}

	return &Uploader{
		s3Client: s3Client,
		manager: manager.NewUploader(s3Client, func(u *manager.Uploader) {
			u.PartSize = partSize
			u.Concurrency = 1
		}),
	}
}

// Upload streams input.Body to S3. Bodies smaller than the part size are
// sent with a single PutObject; larger ones use a multipart upload that is
// aborted on failure.
func (u *Uploader) Upload(ctx context.Context, input *s3types.UploadInput) (*s3types.UploadResult, error) {
	startTime := time.Now()

	putInput := &s3.PutObjectInput{
		Bucket: aws.String(input.Bucket),
		Key:    aws.String(input.Key),
		Body:   input.Body,
	}

	if input.ContentType != "" {
		putInput.ContentType = aws.String(input.ContentType)
	}

	output, err := u.manager.Upload(ctx, putInput)
	if err != nil {
		return nil, errors.NewStorageError("upload", input.Bucket, input.Key, errors.ClassifyAWS(err))
	}

	result := &s3types.UploadResult{
		Bucket:    input.Bucket,
		Key:       input.Key,
		Size:      input.Size,
		ETag:      aws.ToString(output.ETag),
		VersionID: aws.ToString(output.VersionID),
		Location:  output.Location,
		Duration:  time.Since(startTime),
	}

	return result, nil
}

var _ s3types.Storage = (*Uploader)(nil)
