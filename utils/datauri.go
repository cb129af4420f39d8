package utils

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// MaxPhotoSize is 10MB of decoded bytes
	MaxPhotoSize = 10 * 1024 * 1024
)

// AllowedPhotoTypes are the image content types accepted on a request.
var AllowedPhotoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// PhotoError represents a photo validation error
type PhotoError struct {
	Code    string
	Message string
}

func (e *PhotoError) Error() string {
	return e.Message
}

// ParseDataURI splits a data URI into its content type and decoded
// bytes. Only base64-encoded URIs are accepted.
func ParseDataURI(uri string) (contentType string, data []byte, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", nil, &PhotoError{
			Code:    "INVALID_DATA_URI",
			Message: "Photo must be a data URI",
		}
	}

	rest := uri[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", nil, &PhotoError{
			Code:    "INVALID_DATA_URI",
			Message: "Photo data URI is missing its payload",
		}
	}

	meta := rest[:comma]
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, &PhotoError{
			Code:    "INVALID_DATA_URI",
			Message: "Photo data URI must be base64 encoded",
		}
	}
	contentType = strings.TrimSuffix(meta, ";base64")

	data, decodeErr := base64.StdEncoding.DecodeString(rest[comma+1:])
	if decodeErr != nil {
		return "", nil, &PhotoError{
			Code:    "INVALID_DATA_URI",
			Message: "Photo payload is not valid base64",
		}
	}

	return contentType, data, nil
}

// ValidatePhotoDataURI validates the photo's content type and decoded size
func ValidatePhotoDataURI(uri string) error {
	contentType, data, err := ParseDataURI(uri)
	if err != nil {
		return err
	}

	if !AllowedPhotoTypes[contentType] {
		return &PhotoError{
			Code:    "INVALID_PHOTO_FORMAT",
			Message: fmt.Sprintf("Content type %s is not allowed", contentType),
		}
	}

	if len(data) > MaxPhotoSize {
		return &PhotoError{
			Code:    "PHOTO_TOO_LARGE",
			Message: fmt.Sprintf("Photo exceeds maximum allowed size of %d MB", MaxPhotoSize/(1024*1024)),
		}
	}

	return nil
}
