package tile

import "github.com/paulmach/orb"

const (
	// PixelSpaceScale is the degree-equivalent size of one source pixel in
	// the synthetic coordinate system.
	PixelSpaceScale = 0.01

	// PixelSpaceMaxY mirrors the Web-Mercator latitude limit: the vertical
	// half-extent of a pixel-space image is clamped to this value.
	PixelSpaceMaxY = 85.0
)

// PixelSpace is the synthetic coordinate system for a non-georeferenced
// image: origin at the image center, PixelSpaceScale units per source
// pixel. Images too tall to fit inside ±PixelSpaceMaxY are compressed
// vertically so they still map exactly edge-to-edge.
type PixelSpace struct {
	Width  int
	Height int

	halfW  float64
	halfH  float64 // clamped
	scaleY float64
}

// NewPixelSpace builds the synthetic coordinate system for an image of the
// given pixel dimensions.
func NewPixelSpace(width, height int) PixelSpace {
	halfW := float64(width) * PixelSpaceScale / 2.0
	halfH := float64(height) * PixelSpaceScale / 2.0

	scaleY := PixelSpaceScale
	if halfH > PixelSpaceMaxY {
		halfH = PixelSpaceMaxY
		scaleY = (2.0 * halfH) / float64(height)
	}

	return PixelSpace{
		Width:  width,
		Height: height,
		halfW:  halfW,
		halfH:  halfH,
		scaleY: scaleY,
	}
}

// Bounds returns the image extent in synthetic geographic units.
func (p PixelSpace) Bounds() orb.Bound {
	return orb.Bound{
		Min: orb.Point{-p.halfW, -p.halfH},
		Max: orb.Point{p.halfW, p.halfH},
	}
}

// ToPixel converts a synthetic-CRS position to fractional source pixel
// coordinates (0,0 at the top-left corner).
func (p PixelSpace) ToPixel(x, y float64) (px, py float64) {
	px = (x + p.halfW) / PixelSpaceScale
	py = (p.halfH - y) / p.scaleY
	return
}

// FromPixel converts fractional source pixel coordinates back to the
// synthetic CRS.
func (p PixelSpace) FromPixel(px, py float64) (x, y float64) {
	x = px*PixelSpaceScale - p.halfW
	y = p.halfH - py*p.scaleY
	return
}
