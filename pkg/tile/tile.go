// Package tile implements slippy-map tile math: conversions between
// (z, x, y) tile addresses and Web-Mercator or geographic bounds, plus the
// synthetic pixel-space coordinate system used for non-georeferenced imagery.
// http://wiki.openstreetmap.org/wiki/Slippy_map_tilenames
package tile

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// OriginShift is half the Web-Mercator world extent in meters
	// (2 * pi * 6378137 / 2).
	OriginShift = 20037508.342789244

	// DefaultSize is the standard web map tile dimension in pixels.
	DefaultSize = 256
)

// Coord addresses one square tile in the quad-tree pyramid. Y grows
// southward: y=0 is the northernmost row.
type Coord struct {
	Z int
	X int
	Y int
}

// MercatorBounds returns the tile extent in EPSG:3857 meters.
func (c Coord) MercatorBounds() orb.Bound {
	n := math.Exp2(float64(c.Z))
	tileWidth := 2 * OriginShift / n

	minX := -OriginShift + float64(c.X)*tileWidth
	maxY := OriginShift - float64(c.Y)*tileWidth

	return orb.Bound{
		Min: orb.Point{minX, maxY - tileWidth},
		Max: orb.Point{minX + tileWidth, maxY},
	}
}

// GeoBounds returns the tile extent in WGS84 degrees. Latitude uses the
// inverse Web-Mercator function and decreases as y increases, so the
// y+1 row edge is the southern (minimum) latitude.
func (c Coord) GeoBounds() orb.Bound {
	n := math.Exp2(float64(c.Z))

	minLon := float64(c.X)/n*360.0 - 180.0
	maxLon := float64(c.X+1)/n*360.0 - 180.0

	maxLat := math.Atan(math.Sinh(math.Pi*(1.0-2.0*float64(c.Y)/n))) * 180.0 / math.Pi
	minLat := math.Atan(math.Sinh(math.Pi*(1.0-2.0*float64(c.Y+1)/n))) * 180.0 / math.Pi

	return orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}
}

// Intersects reports whether two axis-aligned boxes overlap. Touching
// edges count as intersecting so boundary tiles are never dropped.
func Intersects(a, b orb.Bound) bool {
	return a.Intersects(b)
}
