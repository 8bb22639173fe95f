package raster

import "fmt"

// ApplyGeoTransform maps fractional pixel coordinates to native CRS
// coordinates. Coefficient layout follows the GDAL convention:
// x = gt[0] + px*gt[1] + py*gt[2], y = gt[3] + px*gt[4] + py*gt[5].
func ApplyGeoTransform(gt [6]float64, px, py float64) (x, y float64) {
	x = gt[0] + px*gt[1] + py*gt[2]
	y = gt[3] + px*gt[4] + py*gt[5]
	return
}

// InvertGeoTransform returns the inverse affine mapping, from native CRS
// coordinates back to fractional pixel coordinates.
func InvertGeoTransform(gt [6]float64) ([6]float64, error) {
	det := gt[1]*gt[5] - gt[2]*gt[4]
	if det == 0 {
		return [6]float64{}, fmt.Errorf("geotransform is not invertible")
	}

	inv := 1.0 / det
	return [6]float64{
		(gt[2]*gt[3] - gt[0]*gt[5]) * inv,
		gt[5] * inv,
		-gt[2] * inv,
		(gt[0]*gt[4] - gt[1]*gt[3]) * inv,
		-gt[4] * inv,
		gt[1] * inv,
	}, nil
}

// TileGeoTransform builds the geotransform of a north-up output grid
// covering [minX, maxX] x [minY, maxY] at width x height pixels.
func TileGeoTransform(minX, minY, maxX, maxY float64, width, height int) [6]float64 {
	return [6]float64{
		minX,
		(maxX - minX) / float64(width),
		0,
		maxY,
		0,
		(minY - maxY) / float64(height),
	}
}
