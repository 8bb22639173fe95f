// Package extract renders map tiles from raster sources: it samples raw
// band grids at tile resolution, normalizes them through stretch and gamma
// parameters, and composites one or three channels into an RGBA image.
package extract

import (
	"image"

	"github.com/heimdallmaps/heimdall/internal/raster"
	"github.com/heimdallmaps/heimdall/pkg/tile"
)

// Channel pairs one dataset band with its stretch for compositing.
type Channel struct {
	Dataset raster.Dataset
	Band    int
	Stretch StretchParams
}

// Transparent returns the all-transparent baseline tile.
func Transparent(size int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, size, size))
}

// AutoStretch derives a stretch from the band's value range, falling back
// to the 8-bit identity window when statistics are unavailable.
func AutoStretch(ds raster.Dataset, band int) StretchParams {
	min, max, err := ds.ComputeMinMax(band, true)
	if err != nil {
		min, max = 0, 255
	}
	return StretchParams{Min: min, Max: max, Gamma: 1.0}
}

// Grayscale renders a single-band tile: the normalized value is replicated
// into R, G and B.
func Grayscale(be raster.Backend, ds raster.Dataset, req Request, stretch StretchParams) (*image.NRGBA, error) {
	grid, err := sampleBand(be, ds, req)
	if err != nil {
		return nil, err
	}

	nodata, hasNodata := ds.NoData(req.Band)
	return composite(req.Size, []gridChannel{{
		grid:      grid,
		stretch:   stretch,
		nodata:    nodata,
		hasNodata: hasNodata,
	}}), nil
}

// RGB renders a composite of three bands of the same dataset. Georeferenced
// sources are reprojected once and all three channels read from the warped
// grid; each band keeps its own stretch and nodata sentinel.
func RGB(be raster.Backend, ds raster.Dataset, coord tile.Coord, size int, bands [3]int, stretches [3]StretchParams) (*image.NRGBA, error) {
	var grids [3][]float64

	if ModeFor(ds) == ModeGeoreferenced {
		dsBounds, err := raster.GeoBounds(be, ds)
		if err != nil {
			return nil, err
		}
		if !tile.Intersects(coord.GeoBounds(), dsBounds) {
			return Transparent(size), nil
		}

		warped, err := warpToTile(be, ds, coord, size)
		if err != nil {
			return nil, err
		}
		defer warped.Close()

		for i, band := range bands {
			grids[i], err = warped.ReadWindow(band, 0, 0, size, size, size, size, raster.ResampleNearest)
			if err != nil {
				return nil, err
			}
		}
	} else {
		for i, band := range bands {
			grid, err := samplePixelSpace(ds, Request{Coord: coord, Band: band, Size: size})
			if err != nil {
				return nil, err
			}
			grids[i] = grid
		}
	}

	chans := make([]gridChannel, 3)
	for i := range chans {
		nodata, hasNodata := ds.NoData(bands[i])
		chans[i] = gridChannel{
			grid:      grids[i],
			stretch:   stretches[i],
			nodata:    nodata,
			hasNodata: hasNodata,
		}
	}
	return composite(size, chans), nil
}

// CrossRGB renders a composite whose channels come from independent
// datasets. Each channel is sampled on its own; the only alignment
// between them is that all three were resampled into the same tile grid.
func CrossRGB(be raster.Backend, coord tile.Coord, size int, channels [3]Channel) (*image.NRGBA, error) {
	chans := make([]gridChannel, 3)
	for i, c := range channels {
		grid, err := sampleBand(be, c.Dataset, Request{Coord: coord, Band: c.Band, Size: size})
		if err != nil {
			return nil, err
		}
		nodata, hasNodata := c.Dataset.NoData(c.Band)
		chans[i] = gridChannel{
			grid:      grid,
			stretch:   c.Stretch,
			nodata:    nodata,
			hasNodata: hasNodata,
		}
	}
	return composite(size, chans), nil
}

type gridChannel struct {
	grid      []float64
	stretch   StretchParams
	nodata    float64
	hasNodata bool
}

// composite merges 1 or 3 normalized channels into an RGBA buffer. The
// buffer starts fully transparent; a pixel becomes opaque when any channel
// holds a valid sample, with invalid channels contributing 0 to their
// color component. A single channel is replicated into R, G and B.
func composite(size int, chans []gridChannel) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	n := size * size
	for i := 0; i < n; i++ {
		var vals [3]uint8
		anyValid := false

		for c := range chans {
			v, ok := chans[c].stretch.Normalize(chans[c].grid[i], chans[c].nodata, chans[c].hasNodata)
			if ok {
				vals[c] = v
				anyValid = true
			}
		}
		if !anyValid {
			continue
		}

		if len(chans) == 1 {
			vals[1], vals[2] = vals[0], vals[0]
		}

		idx := i * 4
		img.Pix[idx] = vals[0]
		img.Pix[idx+1] = vals[1]
		img.Pix[idx+2] = vals[2]
		img.Pix[idx+3] = 255
	}

	return img
}
