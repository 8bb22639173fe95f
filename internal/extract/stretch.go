package extract

import "math"

// StretchParams define the raw-value window and gamma exponent mapped onto
// 8-bit display intensity.
type StretchParams struct {
	Min   float64
	Max   float64
	Gamma float64
}

// DefaultStretch is the identity mapping for 8-bit imagery.
func DefaultStretch() StretchParams {
	return StretchParams{Min: 0, Max: 255, Gamma: 1.0}
}

// Normalize maps a raw sample to an 8-bit intensity. ok is false when the
// sample is invalid and must render transparent: non-finite values, values
// matching the nodata sentinel, and exact 0.0. Zero is always invalid so
// that empty tile regions, which read back as 0.0, never render as solid
// black.
func (s StretchParams) Normalize(value float64, nodata float64, hasNodata bool) (uint8, bool) {
	if value == 0.0 || (hasNodata && math.Abs(value-nodata) < 1e-10) || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	spread := 1.0
	if s.Max > s.Min {
		spread = s.Max - s.Min
	}

	normalized := (value - s.Min) / spread
	if normalized < 0 {
		normalized = 0
	} else if normalized > 1 {
		normalized = 1
	}

	corrected := math.Pow(normalized, 1.0/s.Gamma)

	scaled := corrected * 255.0
	if scaled < 0 {
		scaled = 0
	} else if scaled > 255 {
		scaled = 255
	}
	return uint8(scaled), true
}
