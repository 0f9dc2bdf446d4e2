package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/input-output-hk/s3upload/errors"
)

// MaxObjectKeyLength is the S3 limit on object key length in bytes.
const MaxObjectKeyLength = 1024

// ValidateObjectKey validates that an object key is acceptable to S3.
// Keys are derived from local paths, so relative segments such as "../" are
// allowed; they are ordinary characters to the service.
func ValidateObjectKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: object key cannot be empty", errors.ErrInvalidObjectKey)
	}

	if len(key) > MaxObjectKeyLength {
		return fmt.Errorf("%w: object key cannot exceed %d bytes", errors.ErrInvalidObjectKey, MaxObjectKeyLength)
	}

	// S3 keys can contain any UTF-8 character but control characters break
	// listing tools and signed URLs
	if hasControlCharacters(key) {
		return fmt.Errorf("%w: object key cannot contain control characters", errors.ErrInvalidObjectKey)
	}

	return nil
}

// ValidateEndpoint validates an object-storage endpoint URL.
// The URL must be absolute with an http or https scheme and a host.
func ValidateEndpoint(endpoint string) error {
	if strings.TrimSpace(endpoint) == "" {
		return errors.ErrMissingSetting
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidSetting, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: endpoint %q must use http or https", errors.ErrInvalidSetting, endpoint)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: endpoint %q has no host", errors.ErrInvalidSetting, endpoint)
	}

	return nil
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
