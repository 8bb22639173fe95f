package extract

import (
	"math"
	"testing"
)

func TestNormalizeZeroIsAlwaysInvalid(t *testing.T) {
	stretches := []StretchParams{
		DefaultStretch(),
		{Min: -100, Max: 100, Gamma: 1.0},
		{Min: 10, Max: 20, Gamma: 2.5},
	}
	for _, s := range stretches {
		if _, ok := s.Normalize(0.0, -9999, true); ok {
			t.Errorf("Normalize(0.0, %+v) should be invalid", s)
		}
		if _, ok := s.Normalize(0.0, 0, false); ok {
			t.Errorf("Normalize(0.0, %+v) without nodata should be invalid", s)
		}
	}
}

func TestNormalizeSaturation(t *testing.T) {
	s := StretchParams{Min: 0, Max: 100, Gamma: 1.0}

	if v, ok := s.Normalize(100.0, 0, false); !ok || v != 255 {
		t.Errorf("Normalize(max) = (%d, %v), want (255, true)", v, ok)
	}
	if v, ok := s.Normalize(150.0, 0, false); !ok || v != 255 {
		t.Errorf("Normalize(above max) = (%d, %v), want (255, true)", v, ok)
	}

	below := StretchParams{Min: 10, Max: 100, Gamma: 1.0}
	if v, ok := below.Normalize(5.0, 0, false); !ok || v != 0 {
		t.Errorf("Normalize(below min) = (%d, %v), want (0, true)", v, ok)
	}
}

func TestNormalizeMidValue(t *testing.T) {
	s := StretchParams{Min: 0, Max: 100, Gamma: 1.0}
	v, ok := s.Normalize(50.0, 0, false)
	if !ok {
		t.Fatal("mid value should be valid")
	}
	if v < 127 || v > 128 {
		t.Errorf("Normalize(50) = %d, want 127 or 128", v)
	}
}

func TestNormalizeNoData(t *testing.T) {
	s := StretchParams{Min: 0, Max: 100, Gamma: 1.0}

	if _, ok := s.Normalize(-9999.0, -9999.0, true); ok {
		t.Error("exact nodata match should be invalid")
	}
	if _, ok := s.Normalize(-9999.0+5e-11, -9999.0, true); ok {
		t.Error("value within 1e-10 of nodata should be invalid")
	}
	if _, ok := s.Normalize(-9999.0, -9999.0, false); !ok {
		t.Error("without a nodata sentinel the value should be valid")
	}
}

func TestNormalizeNonFinite(t *testing.T) {
	s := DefaultStretch()
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, ok := s.Normalize(v, 0, false); ok {
			t.Errorf("Normalize(%f) should be invalid", v)
		}
	}
}

func TestNormalizeGamma(t *testing.T) {
	// Output is normalized^(1/gamma): gamma < 1 darkens midtones,
	// gamma > 1 brightens them.
	low := StretchParams{Min: 0, Max: 100, Gamma: 0.5}
	v, ok := low.Normalize(25.0, 0, false)
	if !ok || v >= 50 {
		t.Errorf("gamma 0.5 at 25%% = (%d, %v), want a dark value", v, ok)
	}

	high := StretchParams{Min: 0, Max: 100, Gamma: 2.0}
	v, ok = high.Normalize(25.0, 0, false)
	if !ok || v <= 100 {
		t.Errorf("gamma 2.0 at 25%% = (%d, %v), want a bright value", v, ok)
	}
}

func TestNormalizeGammaMonotonic(t *testing.T) {
	prev := uint8(0)
	for _, gamma := range []float64{0.25, 0.5, 1.0, 2.0, 4.0} {
		s := StretchParams{Min: 0, Max: 100, Gamma: gamma}
		v, ok := s.Normalize(40.0, 0, false)
		if !ok {
			t.Fatalf("gamma %f: value unexpectedly invalid", gamma)
		}
		if v <= prev && prev != 255 {
			t.Errorf("gamma %f: output %d not greater than %d", gamma, v, prev)
		}
		prev = v
	}
}

func TestNormalizeDegenerateRange(t *testing.T) {
	// max <= min collapses to a range of 1.0 instead of dividing by zero.
	s := StretchParams{Min: 50, Max: 50, Gamma: 1.0}
	if v, ok := s.Normalize(51.0, 0, false); !ok || v != 255 {
		t.Errorf("degenerate range above min = (%d, %v), want (255, true)", v, ok)
	}
	if v, ok := s.Normalize(49.0, 0, false); !ok || v != 0 {
		t.Errorf("degenerate range below min = (%d, %v), want (0, true)", v, ok)
	}

	inverted := StretchParams{Min: 100, Max: 0, Gamma: 1.0}
	if v, ok := inverted.Normalize(100.5, 0, false); !ok || v == 0 {
		t.Errorf("inverted range = (%d, %v), want a valid nonzero value", v, ok)
	}
}
