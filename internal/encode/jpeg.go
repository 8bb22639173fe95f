package encode

import (
	"bytes"
	"image"
	"image/jpeg"
)

// JPEGEncoder encodes tiles as JPEG. JPEG carries no alpha channel, so
// transparent regions flatten to black.
type JPEGEncoder struct {
	Quality int // 1-100, default 85
}

func (e *JPEGEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	quality := e.Quality
	if quality <= 0 {
		quality = 85
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *JPEGEncoder) Format() string        { return "jpeg" }
func (e *JPEGEncoder) ContentType() string   { return "image/jpeg" }
func (e *JPEGEncoder) FileExtension() string { return ".jpg" }
