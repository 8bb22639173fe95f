package extract

import (
	"fmt"
	"math"

	"github.com/heimdallmaps/heimdall/internal/raster"
	"github.com/heimdallmaps/heimdall/pkg/tile"
)

const webMercatorCRS = "EPSG:3857"

// Request identifies one tile rendering operation.
type Request struct {
	Coord tile.Coord
	Band  int
	Size  int
}

// Mode tags which sampling path a dataset takes. Georeferenced sources go
// through the library's reprojection into a Web-Mercator grid;
// non-georeferenced sources are windowed directly through the synthetic
// pixel-space coordinate system.
type Mode int

const (
	ModeGeoreferenced Mode = iota
	ModePixelSpace
)

// ModeFor selects the sampling path for a dataset.
func ModeFor(ds raster.Dataset) Mode {
	if raster.IsGeoreferenced(ds) {
		return ModeGeoreferenced
	}
	return ModePixelSpace
}

// warpToTile reprojects all bands of a georeferenced source into an
// in-memory Web-Mercator grid covering the requested tile. One warp serves
// every band of the dataset for this tile; callers read the bands they
// need from the returned handle and close it.
func warpToTile(be raster.Backend, ds raster.Dataset, coord tile.Coord, size int) (raster.Dataset, error) {
	bounds := coord.MercatorBounds()
	gt := raster.TileGeoTransform(bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1], size, size)
	return be.Reproject(ds, webMercatorCRS, gt, size, size, ds.BandCount())
}

// samplePixelSpace extracts a tile-sized grid from a non-georeferenced
// image: the tile's geographic bounds are mapped through the synthetic CRS
// into a source pixel rectangle, clamped to the image, and read with
// implicit resampling. Tiles that miss the image, or degenerate rectangles,
// yield an all-zero grid.
func samplePixelSpace(ds raster.Dataset, req Request) ([]float64, error) {
	width, height := ds.Size()
	ps := tile.NewPixelSpace(width, height)

	geo := req.Coord.GeoBounds()
	if !tile.Intersects(geo, ps.Bounds()) {
		return make([]float64, req.Size*req.Size), nil
	}

	// Tile corners in source pixel coordinates. The north edge (max lat)
	// is the smaller pixel row.
	x0, y0 := ps.ToPixel(geo.Min[0], geo.Max[1])
	x1, y1 := ps.ToPixel(geo.Max[0], geo.Min[1])

	srcX := int(math.Floor(math.Max(x0, 0)))
	srcY := int(math.Floor(math.Max(y0, 0)))
	srcXEnd := int(math.Ceil(math.Min(x1, float64(width))))
	srcYEnd := int(math.Ceil(math.Min(y1, float64(height))))

	srcW := srcXEnd - srcX
	if srcW < 1 {
		srcW = 1
	}
	srcH := srcYEnd - srcY
	if srcH < 1 {
		srcH = 1
	}

	if srcX >= width || srcY >= height {
		return make([]float64, req.Size*req.Size), nil
	}

	return ds.ReadWindow(req.Band, srcX, srcY, srcW, srcH, req.Size, req.Size, raster.ResampleNearest)
}

// sampleBand produces the raw tile-resolution grid for one band of one
// dataset, routing through whichever path the dataset's georeferencing
// calls for. Georeferenced sources that do not intersect the tile yield an
// all-zero grid.
func sampleBand(be raster.Backend, ds raster.Dataset, req Request) ([]float64, error) {
	switch ModeFor(ds) {
	case ModePixelSpace:
		return samplePixelSpace(ds, req)
	default:
		dsBounds, err := raster.GeoBounds(be, ds)
		if err != nil {
			return nil, err
		}
		if !tile.Intersects(req.Coord.GeoBounds(), dsBounds) {
			return make([]float64, req.Size*req.Size), nil
		}

		warped, err := warpToTile(be, ds, req.Coord, req.Size)
		if err != nil {
			return nil, err
		}
		defer warped.Close()

		grid, err := warped.ReadWindow(req.Band, 0, 0, req.Size, req.Size, req.Size, req.Size, raster.ResampleNearest)
		if err != nil {
			return nil, fmt.Errorf("failed to read reprojected band %d: %v", req.Band, err)
		}
		return grid, nil
	}
}
