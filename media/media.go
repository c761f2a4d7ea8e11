// Package media uploads featured images and returns the URL they are served
// from.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultMaxImageBytes is the upload limit the blog has always enforced.
const DefaultMaxImageBytes int64 = 5 * 1024 * 1024

var ErrInvalidImage = errors.New("invalid image")

// Image is an uploaded file held in memory.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Host stores an image and returns a stable URL for it.
type Host interface {
	Upload(ctx context.Context, img Image) (string, error)
}

// MediaType returns the declared content type, falling back to sniffing the
// bytes.
func (img Image) MediaType() string {
	if ct := strings.TrimSpace(img.ContentType); ct != "" && ct != "application/octet-stream" {
		return strings.ToLower(ct)
	}
	return http.DetectContentType(img.Data)
}

// Validate checks size and type. Errors wrap ErrInvalidImage.
func Validate(img Image, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if len(img.Data) == 0 {
		return fmt.Errorf("%w: image is empty", ErrInvalidImage)
	}
	if int64(len(img.Data)) > maxBytes {
		return fmt.Errorf("%w: image must be at most %d bytes", ErrInvalidImage, maxBytes)
	}
	if !strings.HasPrefix(img.MediaType(), "image/") {
		return fmt.Errorf("%w: only image files are allowed", ErrInvalidImage)
	}
	return nil
}
