package stats

import (
	"fmt"
	"math"

	"github.com/heimdallmaps/heimdall/internal/raster"
)

const (
	// DefaultBinCount is used when a histogram request does not name one.
	DefaultBinCount = 256

	// maxSampleDim caps the read resolution of histogram sampling. Larger
	// rasters are decimated with nearest-neighbor resampling; the histogram
	// describes the sample, not every pixel.
	maxSampleDim = 1024
)

// Histogram is the binned value distribution of one band over [Min, Max].
type Histogram struct {
	Band     int       `json:"band"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	BinCount int       `json:"bin_count"`
	Counts   []uint64  `json:"counts"`
	BinEdges []float64 `json:"bin_edges"`
}

// ComputeHistogram bins the band's sampled values over its own min/max
// range.
func ComputeHistogram(ds raster.Dataset, band, binCount int) (*Histogram, error) {
	if binCount <= 0 {
		binCount = DefaultBinCount
	}

	min, max, err := ds.ComputeMinMax(band, true)
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics for band %d: %v", band, err)
	}

	width, height := ds.Size()
	readW, readH := width, height
	if width > maxSampleDim || height > maxSampleDim {
		scale := float64(maxSampleDim) / float64(maxInt(width, height))
		readW = int(float64(width) * scale)
		readH = int(float64(height) * scale)
	}

	values, err := ds.ReadWindow(band, 0, 0, width, height, readW, readH, raster.ResampleNearest)
	if err != nil {
		return nil, fmt.Errorf("failed to read band %d: %v", band, err)
	}

	nodata, hasNodata := ds.NoData(band)
	counts, edges := binValues(values, min, max, binCount, nodata, hasNodata)

	return &Histogram{
		Band:     band,
		Min:      min,
		Max:      max,
		BinCount: binCount,
		Counts:   counts,
		BinEdges: edges,
	}, nil
}

// binValues assigns each non-nodata value within [min, max] to the bin
// floor((v-min)/range * (binCount-1)), clamped to the last bin. A
// degenerate range sends every valid value to bin 0 and collapses all
// edges onto min.
func binValues(values []float64, min, max float64, binCount int, nodata float64, hasNodata bool) ([]uint64, []float64) {
	counts := make([]uint64, binCount)
	rng := max - min

	if rng > 0 {
		for _, v := range values {
			if hasNodata && math.Abs(v-nodata) < 1e-10 {
				continue
			}
			// Inclusive comparison so NaN fails it and is skipped rather
			// than producing a bogus bin index.
			if !(v >= min && v <= max) {
				continue
			}
			idx := int(math.Floor((v - min) / rng * float64(binCount-1)))
			if idx > binCount-1 {
				idx = binCount - 1
			}
			counts[idx]++
		}
	} else {
		var valid uint64
		for _, v := range values {
			if hasNodata && math.Abs(v-nodata) < 1e-10 {
				continue
			}
			valid++
		}
		counts[0] = valid
	}

	binWidth := rng / float64(binCount)
	edges := make([]float64, binCount+1)
	for i := range edges {
		edges[i] = min + float64(i)*binWidth
	}

	return counts, edges
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
