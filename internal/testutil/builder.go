// Package testutil provides a builder for creating mock S3 clients.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithPutObject configures the PutObject behavior.
func (b *MockBuilder) WithPutObject(
	fn func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error),
) *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithSuccessfulUpload configures the mock to always return successful uploads.
func (b *MockBuilder) WithSuccessfulUpload() *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		// Consume the body if provided
		if params.Body != nil {
			_, _ = io.Copy(io.Discard, params.Body)
		}
		return &s3.PutObjectOutput{
			ETag: aws.String(`"test-etag"`),
		}, nil
	}
	return b
}

// WithRecordedUploads configures PutObject to store every body in objects,
// keyed by object key. The map is guarded by its own mutex.
func (b *MockBuilder) WithRecordedUploads(objects *RecordedObjects) *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		var data []byte
		if params.Body != nil {
			var err error
			data, err = io.ReadAll(params.Body)
			if err != nil {
				return nil, err
			}
		}
		objects.put(aws.ToString(params.Bucket), aws.ToString(params.Key), data)
		return &s3.PutObjectOutput{
			ETag: aws.String(`"recorded-etag"`),
		}, nil
	}
	return b
}

// WithFailedUpload configures the mock to always return upload failures.
func (b *MockBuilder) WithFailedUpload(err error) *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, err
	}
	return b
}

// WithNoSuchBucket configures the mock to fail every upload with a NoSuchBucket API error.
func (b *MockBuilder) WithNoSuchBucket() *MockBuilder {
	return b.WithFailedUpload(&smithy.GenericAPIError{
		Code:    "NoSuchBucket",
		Message: "The specified bucket does not exist",
	})
}

// WithAccessDenied configures the mock to fail every upload with an AccessDenied API error.
func (b *MockBuilder) WithAccessDenied() *MockBuilder {
	return b.WithFailedUpload(&smithy.GenericAPIError{
		Code:    "AccessDenied",
		Message: "Access Denied",
	})
}

// WithMultipartUpload configures the mock for multipart upload operations.
func (b *MockBuilder) WithMultipartUpload() *MockBuilder {
	uploadID := "test-upload-id"

	b.client.CreateMultipartUploadFunc = func(ctx context.Context, params *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
		return &s3.CreateMultipartUploadOutput{
			UploadId: aws.String(uploadID),
			Bucket:   params.Bucket,
			Key:      params.Key,
		}, nil
	}

	b.client.UploadPartFunc = func(ctx context.Context, params *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
		// Consume the body if provided
		if params.Body != nil {
			_, _ = io.Copy(io.Discard, params.Body)
		}
		return &s3.UploadPartOutput{
			ETag: aws.String(`"part-etag"`),
		}, nil
	}

	b.client.CompleteMultipartUploadFunc = func(ctx context.Context, params *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
		return &s3.CompleteMultipartUploadOutput{
			ETag:   aws.String(`"multipart-etag"`),
			Bucket: params.Bucket,
			Key:    params.Key,
		}, nil
	}

	b.client.AbortMultipartUploadFunc = func(ctx context.Context, params *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
		return &s3.AbortMultipartUploadOutput{}, nil
	}

	return b
}

// RecordedObjects collects objects written through a mock.
type RecordedObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	order   []string
}

// NewRecordedObjects creates an empty RecordedObjects.
func NewRecordedObjects() *RecordedObjects {
	return &RecordedObjects{objects: make(map[string][]byte)}
}

func (r *RecordedObjects) put(bucket, key string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := bucket + "/" + key
	r.objects[id] = data
	r.order = append(r.order, id)
}

// Get returns the body stored for bucket/key.
func (r *RecordedObjects) Get(bucket, key string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.objects[bucket+"/"+key]
	return data, ok
}

// Calls returns every "bucket/key" written, in call order, including repeats.
func (r *RecordedObjects) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}
