package encode

import (
	"bytes"
	"image"

	"github.com/gen2brain/webp"
)

// WebPEncoder encodes tiles as lossy WebP using a pure-Go (WASM-based)
// encoder. No CGo or system libwebp required.
type WebPEncoder struct {
	Quality int // 1-100, default 85
}

func (e *WebPEncoder) Encode(img image.Image) ([]byte, error) {
	quality := e.Quality
	if quality <= 0 {
		quality = 85
	}
	var buf bytes.Buffer
	opts := webp.Options{Lossless: false, Quality: quality}
	if err := webp.Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *WebPEncoder) Format() string        { return "webp" }
func (e *WebPEncoder) ContentType() string   { return "image/webp" }
func (e *WebPEncoder) FileExtension() string { return ".webp" }
