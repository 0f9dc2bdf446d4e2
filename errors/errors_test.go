package errors

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	base := fmt.Errorf("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op only",
			err:  NewError("walk", KindFilesystem, base),
			want: "walk: boom",
		},
		{
			name: "path only",
			err:  NewFilesystemError("open", "data/a.txt", base),
			want: "open data/a.txt: boom",
		},
		{
			name: "bucket and key",
			err:  NewStorageError("upload", "my-bucket", "data/a.txt", base),
			want: "upload my-bucket/data/a.txt: boom",
		},
		{
			name: "path bucket and key",
			err:  NewStorageError("upload", "my-bucket", "data/a.txt", base).WithPath(`data\a.txt`),
			want: `upload data\a.txt -> my-bucket/data/a.txt: boom`,
		},
		{
			name: "bucket only",
			err:  NewError("client", KindStorage, base).WithBucket("my-bucket"),
			want: "client bucket my-bucket: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_KindMatching(t *testing.T) {
	cfgErr := NewConfigError("S3_BUCKET", ErrMissingSetting)
	fsErr := NewFilesystemError("open", "x", io.ErrUnexpectedEOF)
	stErr := NewStorageError("upload", "b", "k", ErrBucketNotFound)

	assert.True(t, IsConfiguration(cfgErr))
	assert.False(t, IsFilesystem(cfgErr))
	assert.True(t, Is(cfgErr, ErrMissingSetting))
	assert.Contains(t, cfgErr.Error(), "S3_BUCKET")

	assert.True(t, IsFilesystem(fsErr))
	assert.True(t, Is(fsErr, io.ErrUnexpectedEOF))
	assert.False(t, IsStorage(fsErr))

	assert.True(t, IsStorage(stErr))
	assert.True(t, IsBucketNotFound(stErr))
	assert.False(t, IsAccessDenied(stErr))

	wrapped := fmt.Errorf("run: %w", stErr)
	assert.True(t, IsStorage(wrapped))
	assert.Equal(t, KindStorage, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(io.EOF))
}

func TestError_WithMessage(t *testing.T) {
	err := NewFilesystemError("walk", "data", ErrNotDirectory).WithMessage("source directory")
	assert.Equal(t, "walk data: source directory: not a directory", err.Error())
	assert.True(t, Is(err, ErrNotDirectory))
}

func TestClassifyAWS(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "no such bucket",
			err:  &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "missing"},
			want: ErrBucketNotFound,
		},
		{
			name: "access denied",
			err:  &smithy.GenericAPIError{Code: "AccessDenied"},
			want: ErrAccessDenied,
		},
		{
			name: "bad signature",
			err:  &smithy.GenericAPIError{Code: "SignatureDoesNotMatch"},
			want: ErrInvalidCredentials,
		},
		{
			name: "missing credential chain",
			err:  fmt.Errorf("operation error S3: PutObject, failed to retrieve credentials"),
			want: ErrInvalidCredentials,
		},
		{
			name: "deadline",
			err:  fmt.Errorf("put: %w", context.DeadlineExceeded),
			want: ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAWS(tt.err)
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	t.Run("unknown code passes through", func(t *testing.T) {
		orig := &smithy.GenericAPIError{Code: "SlowDown"}
		assert.Same(t, error(orig), ClassifyAWS(orig))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, ClassifyAWS(nil))
	})
}
