package raster_test

import (
	"math"
	"testing"

	"github.com/heimdallmaps/heimdall/internal/raster"
	"github.com/heimdallmaps/heimdall/internal/raster/memory"
)

func TestGeoTransformRoundTrip(t *testing.T) {
	gt := raster.TileGeoTransform(-180, -90, 180, 90, 360, 180)

	x, y := raster.ApplyGeoTransform(gt, 0, 0)
	if x != -180 || y != 90 {
		t.Errorf("top-left corner = (%f, %f), want (-180, 90)", x, y)
	}
	x, y = raster.ApplyGeoTransform(gt, 360, 180)
	if x != 180 || y != -90 {
		t.Errorf("bottom-right corner = (%f, %f), want (180, -90)", x, y)
	}

	inv, err := raster.InvertGeoTransform(gt)
	if err != nil {
		t.Fatalf("InvertGeoTransform: %v", err)
	}
	px, py := raster.ApplyGeoTransform(inv, 10.0, 20.0)
	bx, by := raster.ApplyGeoTransform(gt, px, py)
	if math.Abs(bx-10.0) > 1e-9 || math.Abs(by-20.0) > 1e-9 {
		t.Errorf("round trip = (%f, %f), want (10, 20)", bx, by)
	}
}

func TestInvertGeoTransformSingular(t *testing.T) {
	if _, err := raster.InvertGeoTransform([6]float64{0, 0, 0, 0, 0, 0}); err == nil {
		t.Error("expected an error for a singular geotransform")
	}
}

func openImage(t *testing.T, img *memory.Image) (raster.Backend, raster.Dataset) {
	t.Helper()
	be := memory.NewBackend()
	be.Register("test.tif", img)
	ds, err := be.Open("test.tif")
	if err != nil {
		t.Fatalf("failed to open test dataset: %v", err)
	}
	t.Cleanup(func() { ds.Close() })
	return be, ds
}

func TestIsGeoreferenced(t *testing.T) {
	tests := []struct {
		name string
		img  *memory.Image
		want bool
	}{
		{
			"plain image",
			&memory.Image{Width: 4, Height: 4, Bands: [][]float64{make([]float64, 16)}},
			false,
		},
		{
			"projection only",
			&memory.Image{
				Width: 4, Height: 4,
				Bands: [][]float64{make([]float64, 16)},
				CRS:   memory.CRSGeographic,
			},
			true,
		},
		{
			"geotransform only",
			&memory.Image{
				Width: 4, Height: 4,
				Bands:        [][]float64{make([]float64, 16)},
				Transform:    raster.TileGeoTransform(0, 0, 40, 40, 4, 4),
				HasTransform: true,
			},
			true,
		},
		{
			"north-up identity placeholder",
			&memory.Image{
				Width: 4, Height: 4,
				Bands:        [][]float64{make([]float64, 16)},
				Transform:    [6]float64{0, 1, 0, 0, 0, -1},
				HasTransform: true,
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ds := openImage(t, tt.img)
			if got := raster.IsGeoreferenced(ds); got != tt.want {
				t.Errorf("IsGeoreferenced = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNativeBounds(t *testing.T) {
	_, ds := openImage(t, &memory.Image{
		Width: 10, Height: 20,
		Bands:        [][]float64{make([]float64, 200)},
		Transform:    raster.TileGeoTransform(5, -10, 15, 30, 10, 20),
		HasTransform: true,
		CRS:          memory.CRSGeographic,
	})

	b, err := raster.NativeBounds(ds)
	if err != nil {
		t.Fatalf("NativeBounds: %v", err)
	}
	if b.Min[0] != 5 || b.Min[1] != -10 || b.Max[0] != 15 || b.Max[1] != 30 {
		t.Errorf("bounds = %+v, want [5 -10 15 30]", b)
	}
}

func TestGeoBoundsTransformsProjectedExtent(t *testing.T) {
	const shift = 20037508.342789244
	be, ds := openImage(t, &memory.Image{
		Width: 8, Height: 8,
		Bands:        [][]float64{make([]float64, 64)},
		Transform:    raster.TileGeoTransform(-shift, -shift, shift, shift, 8, 8),
		HasTransform: true,
		CRS:          memory.CRSMercator,
	})

	b, err := raster.GeoBounds(be, ds)
	if err != nil {
		t.Fatalf("GeoBounds: %v", err)
	}
	if math.Abs(b.Min[0]+180) > 1e-6 || math.Abs(b.Max[0]-180) > 1e-6 {
		t.Errorf("longitude bounds = [%f, %f], want [-180, 180]", b.Min[0], b.Max[0])
	}
	if math.Abs(b.Min[1]+85.051128) > 1e-3 || math.Abs(b.Max[1]-85.051128) > 1e-3 {
		t.Errorf("latitude bounds = [%f, %f], want about ±85.05", b.Min[1], b.Max[1])
	}
}

func TestGeoBoundsGeographicPassThrough(t *testing.T) {
	be, ds := openImage(t, &memory.Image{
		Width: 4, Height: 4,
		Bands:        [][]float64{make([]float64, 16)},
		Transform:    raster.TileGeoTransform(100, -40, 110, -30, 4, 4),
		HasTransform: true,
		CRS:          memory.CRSGeographic,
	})

	b, err := raster.GeoBounds(be, ds)
	if err != nil {
		t.Fatalf("GeoBounds: %v", err)
	}
	if b.Min[0] != 100 || b.Max[1] != -30 {
		t.Errorf("bounds = %+v, want native extent unchanged", b)
	}
}
