// Package testutil provides an in-memory Storage implementation.
package testutil

import (
	"context"
	"io"
	"sync"

	"github.com/input-output-hk/s3upload/s3types"
)

// UploadCall records one call made to FakeStorage.
type UploadCall struct {
	Bucket      string
	Key         string
	Body        []byte
	Size        int64
	ContentType string
}

// FakeStorage is an in-memory s3types.Storage that records every call.
type FakeStorage struct {
	mu    sync.Mutex
	calls []UploadCall

	// UploadFunc, when set, decides the outcome of each call after the body
	// has been read. Returning an error fails that upload.
	UploadFunc func(call UploadCall) error
}

// NewFakeStorage creates a FakeStorage that accepts every upload.
func NewFakeStorage() *FakeStorage {
	return &FakeStorage{}
}

// Upload implements s3types.Storage.
func (f *FakeStorage) Upload(ctx context.Context, input *s3types.UploadInput) (*s3types.UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	call := UploadCall{
		Bucket:      input.Bucket,
		Key:         input.Key,
		Body:        data,
		Size:        input.Size,
		ContentType: input.ContentType,
	}

	if f.UploadFunc != nil {
		if err := f.UploadFunc(call); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	return &s3types.UploadResult{
		Bucket: input.Bucket,
		Key:    input.Key,
		Size:   int64(len(data)),
		ETag:   `"fake-etag"`,
	}, nil
}

// Calls returns the successful calls in order.
func (f *FakeStorage) Calls() []UploadCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]UploadCall(nil), f.calls...)
}

// Keys returns the object keys of the successful calls in order.
func (f *FakeStorage) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		keys = append(keys, c.Key)
	}
	return keys
}

var _ s3types.Storage = (*FakeStorage)(nil)
