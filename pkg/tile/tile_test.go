package tile

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestGeoBoundsZoom0(t *testing.T) {
	b := Coord{Z: 0, X: 0, Y: 0}.GeoBounds()

	if math.Abs(b.Min[0]-(-180.0)) > 0.001 {
		t.Errorf("min lon = %f, want -180", b.Min[0])
	}
	if math.Abs(b.Max[0]-180.0) > 0.001 {
		t.Errorf("max lon = %f, want 180", b.Max[0])
	}
	// Latitude is limited by the Web-Mercator projection (~85.05).
	if b.Min[1] < -90.0 || b.Min[1] > -80.0 {
		t.Errorf("min lat = %f, want around -85", b.Min[1])
	}
	if b.Max[1] < 80.0 || b.Max[1] > 90.0 {
		t.Errorf("max lat = %f, want around 85", b.Max[1])
	}
	if math.Abs(b.Min[1]+b.Max[1]) > 1e-9 {
		t.Errorf("latitude bounds not symmetric: %f, %f", b.Min[1], b.Max[1])
	}
}

func TestGeoBoundsZoom1NorthWest(t *testing.T) {
	b := Coord{Z: 1, X: 0, Y: 0}.GeoBounds()

	if math.Abs(b.Min[0]-(-180.0)) > 0.001 {
		t.Errorf("min lon = %f, want -180", b.Min[0])
	}
	if math.Abs(b.Max[0]) > 0.001 {
		t.Errorf("max lon = %f, want 0", b.Max[0])
	}
	if b.Max[1] < 80.0 {
		t.Errorf("max lat = %f, want > 80 for the northern row", b.Max[1])
	}
	// The northern row's southern edge is the equator.
	if math.Abs(b.Min[1]) > 1e-9 {
		t.Errorf("min lat = %f, want 0 for the northern row", b.Min[1])
	}
}

func TestMercatorBoundsZoom0(t *testing.T) {
	b := Coord{Z: 0, X: 0, Y: 0}.MercatorBounds()

	for i, got := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		want := []float64{-OriginShift, -OriginShift, OriginShift, OriginShift}[i]
		if math.Abs(got-want) > 1.0 {
			t.Errorf("bounds[%d] = %f, want %f", i, got, want)
		}
	}
}

func TestMercatorBoundsSymmetry(t *testing.T) {
	// At zoom 1, tiles (0,0) and (1,1) are point-symmetric about the origin.
	nw := Coord{Z: 1, X: 0, Y: 0}.MercatorBounds()
	se := Coord{Z: 1, X: 1, Y: 1}.MercatorBounds()

	if math.Abs(nw.Min[0]+se.Max[0]) > 1.0 {
		t.Errorf("min x %f and max x %f not symmetric", nw.Min[0], se.Max[0])
	}
	if math.Abs(nw.Max[1]+se.Min[1]) > 1.0 {
		t.Errorf("max y %f and min y %f not symmetric", nw.Max[1], se.Min[1])
	}
}

func TestMercatorBoundsAdjacentTilesShareEdge(t *testing.T) {
	a := Coord{Z: 3, X: 2, Y: 5}.MercatorBounds()
	b := Coord{Z: 3, X: 3, Y: 5}.MercatorBounds()

	if math.Abs(a.Max[0]-b.Min[0]) > 1e-6 {
		t.Errorf("adjacent tiles do not share an edge: %f vs %f", a.Max[0], b.Min[0])
	}
}

func TestIntersects(t *testing.T) {
	box := func(minX, minY, maxX, maxY float64) orb.Bound {
		return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
	}

	cases := []struct {
		name string
		a, b orb.Bound
		want bool
	}{
		{"overlapping", box(0, 0, 10, 10), box(5, 5, 15, 15), true},
		{"contained", box(0, 0, 20, 20), box(5, 5, 15, 15), true},
		{"touching edge", box(0, 0, 10, 10), box(10, 0, 20, 10), true},
		{"touching corner", box(0, 0, 10, 10), box(10, 10, 20, 20), true},
		{"disjoint", box(0, 0, 10, 10), box(20, 20, 30, 30), false},
		{"horizontal gap", box(-180, -10, -170, 10), box(170, -10, 180, 10), false},
		{"vertical gap", box(0, 0, 10, 10), box(0, 20, 10, 30), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Intersects(tc.a, tc.b); got != tc.want {
				t.Errorf("Intersects = %v, want %v", got, tc.want)
			}
			// Intersection is symmetric.
			if got := Intersects(tc.b, tc.a); got != tc.want {
				t.Errorf("Intersects (swapped) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPixelSpaceSmallImage(t *testing.T) {
	ps := NewPixelSpace(1000, 500)

	b := ps.Bounds()
	if math.Abs(b.Max[0]-5.0) > 1e-9 || math.Abs(b.Max[1]-2.5) > 1e-9 {
		t.Errorf("bounds = %v, want ±5 x ±2.5", b)
	}

	// Corners map exactly edge-to-edge.
	px, py := ps.ToPixel(-5.0, 2.5)
	if math.Abs(px) > 1e-9 || math.Abs(py) > 1e-9 {
		t.Errorf("top-left corner maps to pixel (%f, %f), want (0, 0)", px, py)
	}
	px, py = ps.ToPixel(5.0, -2.5)
	if math.Abs(px-1000) > 1e-9 || math.Abs(py-500) > 1e-9 {
		t.Errorf("bottom-right corner maps to pixel (%f, %f), want (1000, 500)", px, py)
	}
}

func TestPixelSpaceTallImageClamped(t *testing.T) {
	// 20000 px tall at 0.01 units/px would give a half-height of 100,
	// beyond the 85.0 clamp.
	ps := NewPixelSpace(100, 20000)

	b := ps.Bounds()
	if math.Abs(b.Max[1]-PixelSpaceMaxY) > 1e-9 {
		t.Errorf("clamped half-height = %f, want %f", b.Max[1], PixelSpaceMaxY)
	}

	// Despite the clamp the image still maps edge-to-edge vertically.
	_, py := ps.ToPixel(0, PixelSpaceMaxY)
	if math.Abs(py) > 1e-9 {
		t.Errorf("top edge maps to pixel row %f, want 0", py)
	}
	_, py = ps.ToPixel(0, -PixelSpaceMaxY)
	if math.Abs(py-20000) > 1e-6 {
		t.Errorf("bottom edge maps to pixel row %f, want 20000", py)
	}
}

func TestPixelSpaceRoundTrip(t *testing.T) {
	ps := NewPixelSpace(800, 600)

	for _, p := range [][2]float64{{0, 0}, {400, 300}, {799.5, 0.5}, {123.25, 456.75}} {
		x, y := ps.FromPixel(p[0], p[1])
		px, py := ps.ToPixel(x, y)
		if math.Abs(px-p[0]) > 1e-9 || math.Abs(py-p[1]) > 1e-9 {
			t.Errorf("round trip of (%f, %f) gave (%f, %f)", p[0], p[1], px, py)
		}
	}
}
