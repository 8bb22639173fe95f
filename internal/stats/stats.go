// Package stats computes per-band statistics and histograms. Both are
// approximations tuned for interactive display: band stats derive mean and
// standard deviation from the value range instead of true moments, and
// histograms read large rasters at reduced resolution.
package stats

import (
	"fmt"
	"strconv"

	"github.com/heimdallmaps/heimdall/internal/raster"
)

// BandStats holds the display statistics for one band. Mean and StdDev are
// derived from the range as (min+max)/2 and (max-min)/4.
type BandStats struct {
	Band   int     `json:"band"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

func fromRange(band int, min, max float64) BandStats {
	return BandStats{
		Band:   band,
		Min:    min,
		Max:    max,
		Mean:   (min + max) / 2.0,
		StdDev: (max - min) / 4.0,
	}
}

// Compute returns the stats for one band from the library's fast min/max
// scan.
func Compute(ds raster.Dataset, band int) (BandStats, error) {
	min, max, err := ds.ComputeMinMax(band, true)
	if err != nil {
		return BandStats{}, fmt.Errorf("failed to compute statistics for band %d: %v", band, err)
	}
	return fromRange(band, min, max), nil
}

// ComputeAll returns stats for every band. A band whose statistics cannot
// be computed is omitted rather than failing the whole call.
func ComputeAll(ds raster.Dataset) []BandStats {
	out := make([]BandStats, 0, ds.BandCount())
	for band := 1; band <= ds.BandCount(); band++ {
		s, err := Compute(ds, band)
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Default returns stats without any pixel I/O, for instant display of
// remote sources before real statistics are available. It prefers the
// statistics embedded in band metadata and falls back to a range chosen by
// the band's storage type.
func Default(ds raster.Dataset, band int) BandStats {
	if s, ok := metadataStats(ds, band); ok {
		return s
	}

	switch ds.DataType(band) {
	case raster.TypeUInt8:
		return BandStats{Band: band, Min: 0, Max: 255, Mean: 128, StdDev: 64}
	case raster.TypeInt8:
		return BandStats{Band: band, Min: -128, Max: 127, Mean: 0, StdDev: 64}
	case raster.TypeUInt16:
		return BandStats{Band: band, Min: 0, Max: 10000, Mean: 3000, StdDev: 2000}
	case raster.TypeInt16:
		return BandStats{Band: band, Min: -10000, Max: 10000, Mean: 0, StdDev: 2000}
	case raster.TypeUInt32:
		return BandStats{Band: band, Min: 0, Max: 10000, Mean: 3000, StdDev: 2000}
	case raster.TypeFloat32, raster.TypeFloat64:
		return BandStats{Band: band, Min: 0, Max: 1, Mean: 0.3, StdDev: 0.2}
	default:
		return BandStats{Band: band, Min: 0, Max: 10000, Mean: 3000, StdDev: 2000}
	}
}

// DefaultAll returns I/O-free stats for every band.
func DefaultAll(ds raster.Dataset) []BandStats {
	out := make([]BandStats, 0, ds.BandCount())
	for band := 1; band <= ds.BandCount(); band++ {
		out = append(out, Default(ds, band))
	}
	return out
}

// metadataStats reads the statistics some writers embed on each band.
// Minimum and maximum are required; mean and stddev fall back to the range
// approximation when absent.
func metadataStats(ds raster.Dataset, band int) (BandStats, bool) {
	min, okMin := metadataFloat(ds, band, "STATISTICS_MINIMUM")
	max, okMax := metadataFloat(ds, band, "STATISTICS_MAXIMUM")
	if !okMin || !okMax {
		return BandStats{}, false
	}

	s := fromRange(band, min, max)
	if mean, ok := metadataFloat(ds, band, "STATISTICS_MEAN"); ok {
		s.Mean = mean
	}
	if sd, ok := metadataFloat(ds, band, "STATISTICS_STDDEV"); ok {
		s.StdDev = sd
	}
	return s, true
}

func metadataFloat(ds raster.Dataset, band int, key string) (float64, bool) {
	raw, ok := ds.BandMetadata(band, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
