package profile

import (
	"fmt"
	"math"

	"github.com/heimdallmaps/heimdall/internal/raster"
)

const geographicCRS = "EPSG:4326"

// BandValue is one band's raw value at a queried pixel.
type BandValue struct {
	Band     int     `json:"band"`
	Value    float64 `json:"value"`
	IsNoData bool    `json:"is_nodata"`
}

// QueryResult reports every band's value at one position. A position
// outside the raster extent is not an error: InBounds is false and Values
// is empty.
type QueryResult struct {
	PixelX   int         `json:"pixel_x"`
	PixelY   int         `json:"pixel_y"`
	InBounds bool        `json:"in_bounds"`
	Values   []BandValue `json:"values"`
}

// QueryGeo samples all bands at a lon/lat position.
func QueryGeo(be raster.Backend, ds raster.Dataset, lon, lat float64) (*QueryResult, error) {
	px, py, err := geoToPixel(be, ds, lon, lat)
	if err != nil {
		return nil, err
	}
	return QueryPixel(ds, px, py)
}

// QueryPixel samples all bands at a source pixel position.
func QueryPixel(ds raster.Dataset, px, py float64) (*QueryResult, error) {
	ix, iy := int(math.Floor(px)), int(math.Floor(py))
	res := &QueryResult{PixelX: ix, PixelY: iy}

	width, height := ds.Size()
	if ix < 0 || iy < 0 || ix >= width || iy >= height {
		return res, nil
	}
	res.InBounds = true

	for band := 1; band <= ds.BandCount(); band++ {
		grid, err := ds.ReadWindow(band, ix, iy, 1, 1, 1, 1, raster.ResampleNearest)
		if err != nil {
			return nil, fmt.Errorf("failed to read band %d: %v", band, err)
		}

		v := grid[0]
		nodata, hasNodata := ds.NoData(band)
		res.Values = append(res.Values, BandValue{
			Band:     band,
			Value:    v,
			IsNoData: hasNodata && math.Abs(v-nodata) < 1e-10,
		})
	}
	return res, nil
}

// geoToPixel converts a lon/lat position into fractional source pixel
// coordinates, transforming into the dataset's native CRS first when it
// has a projected one.
func geoToPixel(be raster.Backend, ds raster.Dataset, lon, lat float64) (float64, float64, error) {
	x, y := lon, lat

	proj := ds.Projection()
	if proj != "" {
		geographic, err := be.IsGeographic(proj)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to inspect projection: %v", err)
		}
		if !geographic {
			xs, ys := []float64{x}, []float64{y}
			if err := be.TransformPoints(geographicCRS, proj, xs, ys); err != nil {
				return 0, 0, fmt.Errorf("failed to transform query position: %v", err)
			}
			x, y = xs[0], ys[0]
		}
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return 0, 0, err
	}
	inv, err := raster.InvertGeoTransform(gt)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to invert geotransform: %v", err)
	}

	px, py := raster.ApplyGeoTransform(inv, x, y)
	return px, py, nil
}
