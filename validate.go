package pixcc

import (
	"strings"
)

// DefaultMaxSizeMB defines default image size limit in megabytes.
const DefaultMaxSizeMB = 10

// Validate rejects payloads which must not reach Analyzer: empty ones, larger than
// maxSize bytes (if maxSize > 0) and declared as non image content type.
// Empty contentType is not checked, decoder detects format by itself.
func Validate(data []byte, contentType string, maxSize int) error {

	if len(data) == 0 {
		return ErrMediaIsEmpty
	}

	if maxSize > 0 && len(data) > maxSize {
		return ErrMediaTooLarge
	}

	if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return ErrMediaNotImage
	}

	return nil
}
