// Package profile samples raster values along lines and at single points.
// Lines are given either as geographic waypoints (lon/lat) or as source
// pixel coordinates; either way the sampler interpolates evenly spaced
// positions along the polyline and reads band 1 at each.
package profile

import (
	"errors"
	"math"

	"github.com/paulmach/orb"

	"github.com/heimdallmaps/heimdall/internal/raster"
)

// ErrZeroLengthLine rejects profile lines whose waypoints are all
// coincident, before any raster I/O happens.
var ErrZeroLengthLine = errors.New("profile line has zero length")

const earthRadiusMeters = 6371000.0

// Point is one sample along a profile line. X and Y echo the sampled
// position in the line's own coordinate space.
type Point struct {
	Distance float64 `json:"distance_from_start"`
	Value    float64 `json:"elevation_value"`
	X        float64 `json:"position_x"`
	Y        float64 `json:"position_y"`
	Valid    bool    `json:"is_valid"`
}

// Result is a complete elevation profile. Gain and Loss accumulate only
// between consecutive valid points; Min and Max cover valid points only.
type Result struct {
	Points        []Point `json:"points"`
	MinElevation  float64 `json:"min_elevation"`
	MaxElevation  float64 `json:"max_elevation"`
	TotalDistance float64 `json:"total_distance"`
	ElevationGain float64 `json:"elevation_gain"`
	ElevationLoss float64 `json:"elevation_loss"`
}

// distanceFunc measures one polyline segment.
type distanceFunc func(a, b orb.Point) float64

// haversine is the great-circle distance in meters between two lon/lat
// points.
func haversine(a, b orb.Point) float64 {
	lat1 := a[1] * math.Pi / 180.0
	lat2 := b[1] * math.Pi / 180.0
	dLat := (b[1] - a[1]) * math.Pi / 180.0
	dLon := (b[0] - a[0]) * math.Pi / 180.0

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}

func euclidean(a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// AlongGeographic samples band 1 along a polyline of lon/lat waypoints.
// Segment lengths are great-circle distances in meters; each interpolated
// position is converted through the dataset's georeferencing before
// reading.
func AlongGeographic(be raster.Backend, ds raster.Dataset, line orb.LineString, samples int) (*Result, error) {
	return along(line, samples, haversine, func(p orb.Point) (float64, float64, error) {
		return geoToPixel(be, ds, p[0], p[1])
	}, ds)
}

// AlongPixels samples band 1 along a polyline given directly in source
// pixel coordinates, with Euclidean segment lengths.
func AlongPixels(ds raster.Dataset, line orb.LineString, samples int) (*Result, error) {
	return along(line, samples, euclidean, func(p orb.Point) (float64, float64, error) {
		return p[0], p[1], nil
	}, ds)
}

func along(line orb.LineString, samples int, dist distanceFunc, toPixel func(orb.Point) (float64, float64, error), ds raster.Dataset) (*Result, error) {
	if len(line) < 2 {
		return nil, errors.New("profile line needs at least two waypoints")
	}
	if samples < 2 {
		samples = 2
	}

	// Cumulative length at each waypoint.
	cumulative := make([]float64, len(line))
	for i := 1; i < len(line); i++ {
		cumulative[i] = cumulative[i-1] + dist(line[i-1], line[i])
	}
	total := cumulative[len(cumulative)-1]
	if total <= 0 {
		return nil, ErrZeroLengthLine
	}

	res := &Result{
		Points:        make([]Point, 0, samples),
		TotalDistance: total,
		MinElevation:  math.Inf(1),
		MaxElevation:  math.Inf(-1),
	}

	nodata, hasNodata := ds.NoData(1)
	step := total / float64(samples-1)
	prevValid := false
	prevValue := 0.0

	for i := 0; i < samples; i++ {
		target := float64(i) * step
		pos := interpolate(line, cumulative, target)

		pt := Point{Distance: target, X: pos[0], Y: pos[1]}
		px, py, err := toPixel(pos)
		if err == nil {
			if v, ok := readPixel(ds, 1, px, py, nodata, hasNodata); ok {
				pt.Value = v
				pt.Valid = true
			}
		}

		if pt.Valid {
			res.MinElevation = math.Min(res.MinElevation, pt.Value)
			res.MaxElevation = math.Max(res.MaxElevation, pt.Value)
			if prevValid {
				delta := pt.Value - prevValue
				if delta > 0 {
					res.ElevationGain += delta
				} else {
					res.ElevationLoss += -delta
				}
			}
			prevValid = true
			prevValue = pt.Value
		} else {
			// An invalid sample breaks the gain/loss chain.
			prevValid = false
		}

		res.Points = append(res.Points, pt)
	}

	if math.IsInf(res.MinElevation, 1) {
		res.MinElevation, res.MaxElevation = 0, 0
	}
	return res, nil
}

// interpolate finds the position at the given distance along the polyline
// by linear search through the segments.
func interpolate(line orb.LineString, cumulative []float64, target float64) orb.Point {
	if target <= 0 {
		return line[0]
	}
	for i := 1; i < len(line); i++ {
		if target > cumulative[i] {
			continue
		}
		segLen := cumulative[i] - cumulative[i-1]
		if segLen <= 0 {
			return line[i]
		}
		t := (target - cumulative[i-1]) / segLen
		return orb.Point{
			line[i-1][0] + t*(line[i][0]-line[i-1][0]),
			line[i-1][1] + t*(line[i][1]-line[i-1][1]),
		}
	}
	return line[len(line)-1]
}

// readPixel reads one pixel of one band, reporting ok=false for positions
// outside the raster and for nodata or non-finite values.
func readPixel(ds raster.Dataset, band int, px, py float64, nodata float64, hasNodata bool) (float64, bool) {
	width, height := ds.Size()
	ix, iy := int(math.Floor(px)), int(math.Floor(py))
	if ix < 0 || iy < 0 || ix >= width || iy >= height {
		return 0, false
	}

	grid, err := ds.ReadWindow(band, ix, iy, 1, 1, 1, 1, raster.ResampleNearest)
	if err != nil || len(grid) == 0 {
		return 0, false
	}

	v := grid[0]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if hasNodata && math.Abs(v-nodata) < 1e-10 {
		return 0, false
	}
	return v, true
}
