package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// service error codes shared by AWS S3 and S3-compatible implementations
var codeSentinels = map[string]error{
	"NoSuchBucket":          ErrBucketNotFound,
	"AccessDenied":          ErrAccessDenied,
	"AllAccessDisabled":     ErrAccessDenied,
	"InvalidAccessKeyId":    ErrInvalidCredentials,
	"SignatureDoesNotMatch": ErrInvalidCredentials,
	"ExpiredToken":          ErrInvalidCredentials,
	"InvalidToken":          ErrInvalidCredentials,
	"KeyTooLongError":       ErrInvalidObjectKey,
	"RequestTimeout":        ErrTimeout,
}

// SentinelForCode maps an S3 error code to one of the package sentinels.
// It returns nil when the code is not recognised.
func SentinelForCode(code string) error {
	return codeSentinels[code]
}

// Classify annotates a storage failure with the matching sentinel so that
// errors.Is(err, ErrBucketNotFound) and friends work regardless of backend.
// The original error is kept in the chain. Unrecognised errors are returned as-is.
func Classify(err error, code string) error {
	if err == nil {
		return nil
	}
	if sentinel := SentinelForCode(code); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	if sentinel := transportSentinel(err); sentinel != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}

// ClassifyAWS classifies an error returned by the AWS SDK.
func ClassifyAWS(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return Classify(err, apiErr.ErrorCode())
	}

	return Classify(err, "")
}

// transportSentinel recognises failures that never reached the service.
func transportSentinel(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	// the SDK reports a missing credential chain only through its message
	if strings.Contains(err.Error(), "failed to retrieve credentials") {
		return ErrInvalidCredentials
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return ErrConnection
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrConnection
	}

	return nil
}
