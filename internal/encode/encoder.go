// Package encode turns rendered tile images into wire bytes.
package encode

import (
	"fmt"
	"image"
	"strings"
)

// Encoder encodes an image into tile bytes.
type Encoder interface {
	// Encode encodes an image to bytes in the tile format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "png", "jpeg", "webp").
	Format() string

	// ContentType returns the MIME type for HTTP responses.
	ContentType() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality. Quality
// applies to the lossy formats; non-positive values select the default.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch strings.ToLower(format) {
	case "png", "":
		return &PNGEncoder{}, nil
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "webp":
		return &WebPEncoder{Quality: quality}, nil
	default:
		return nil, fmt.Errorf("unsupported tile format: %q (supported: png, jpeg, webp)", format)
	}
}
