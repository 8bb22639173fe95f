package raster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

const geographicCRS = "EPSG:4326"

// IsGeoreferenced reports whether a dataset carries real georeferencing:
// either a projection string or a geotransform other than the identity
// placeholder [0, 1, 0, 0, 0, ±1] that libraries report for plain images.
func IsGeoreferenced(ds Dataset) bool {
	if ds.Projection() != "" {
		return true
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return false
	}

	isIdentity := math.Abs(gt[0]) < 1e-10 &&
		math.Abs(gt[1]-1.0) < 1e-10 &&
		math.Abs(gt[2]) < 1e-10 &&
		math.Abs(gt[3]) < 1e-10 &&
		math.Abs(gt[4]) < 1e-10 &&
		(math.Abs(gt[5]+1.0) < 1e-10 || math.Abs(gt[5]-1.0) < 1e-10)

	return !isIdentity
}

// NativeBounds returns the dataset extent in its native CRS, derived from
// the geotransform and pixel dimensions.
func NativeBounds(ds Dataset) (orb.Bound, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return orb.Bound{}, fmt.Errorf("failed to get geotransform: %v", err)
	}

	width, height := ds.Size()

	minX := gt[0]
	maxX := gt[0] + float64(width)*gt[1]
	maxY := gt[3]
	minY := gt[3] + float64(height)*gt[5]

	return orb.Bound{
		Min: orb.Point{math.Min(minX, maxX), math.Min(minY, maxY)},
		Max: orb.Point{math.Max(minX, maxX), math.Max(minY, maxY)},
	}, nil
}

// GeoBounds returns the dataset extent in WGS84. Datasets without a
// projection, or already in a geographic CRS, return their native bounds
// unchanged; projected datasets have their four corners transformed and
// the bounding box of the result taken.
func GeoBounds(b Backend, ds Dataset) (orb.Bound, error) {
	native, err := NativeBounds(ds)
	if err != nil {
		return orb.Bound{}, err
	}

	projection := ds.Projection()
	if projection == "" {
		return native, nil
	}

	geographic, err := b.IsGeographic(projection)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("failed to parse source projection: %v", err)
	}
	if geographic {
		return native, nil
	}

	xs := []float64{native.Min[0], native.Max[0], native.Min[0], native.Max[0]}
	ys := []float64{native.Min[1], native.Min[1], native.Max[1], native.Max[1]}

	if err := b.TransformPoints(projection, geographicCRS, xs, ys); err != nil {
		return orb.Bound{}, fmt.Errorf("failed to transform bounds: %v", err)
	}

	minLon, maxLon := math.Inf(1), math.Inf(-1)
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	for i := range xs {
		minLon = math.Min(minLon, xs[i])
		maxLon = math.Max(maxLon, xs[i])
		minLat = math.Min(minLat, ys[i])
		maxLat = math.Max(maxLat, ys[i])
	}

	return orb.Bound{
		Min: orb.Point{minLon, minLat},
		Max: orb.Point{maxLon, maxLat},
	}, nil
}
