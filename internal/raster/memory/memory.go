// Package memory implements the raster capability interface entirely in
// memory. It backs the engine's unit tests, which need predictable pixel
// grids without real geospatial files, and understands just enough CRS
// machinery (EPSG:4326 and EPSG:3857) to exercise both sampling paths.
package memory

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/heimdallmaps/heimdall/internal/raster"
)

const (
	CRSGeographic = "EPSG:4326"
	CRSMercator   = "EPSG:3857"

	originShift = 20037508.342789244
)

// Image is the immutable definition of one registered dataset.
type Image struct {
	Width  int
	Height int

	// Bands holds row-major float grids, one per band.
	Bands [][]float64

	// Transform is the pixel-to-CRS affine; when HasTransform is false the
	// identity placeholder is reported, matching what raster libraries do
	// for plain images.
	Transform    [6]float64
	HasTransform bool

	// CRS is "EPSG:4326", "EPSG:3857" or "" for non-georeferenced images.
	CRS string

	// NoData maps 1-based band numbers to their nodata sentinel.
	NoData map[int]float64

	// Types maps 1-based band numbers to a storage type; bands default to
	// TypeFloat64.
	Types map[int]raster.DataType

	// Metadata maps 1-based band numbers to metadata items.
	Metadata map[int]map[string]string
}

// Backend registers and opens in-memory images by path.
type Backend struct {
	mu     sync.Mutex
	images map[string]*Image
}

func NewBackend() *Backend {
	return &Backend{images: make(map[string]*Image)}
}

// Register makes an image openable under the given path.
func (b *Backend) Register(path string, img *Image) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.images[path] = img
}

func (b *Backend) Open(path string) (raster.Dataset, error) {
	b.mu.Lock()
	img, ok := b.images[path]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("failed to open raster %q: no such dataset", path)
	}
	return &dataset{img: img}, nil
}

func (b *Backend) Reproject(src raster.Dataset, crs string, gt [6]float64, width, height, bands int) (raster.Dataset, error) {
	sds, ok := src.(*dataset)
	if !ok {
		return nil, fmt.Errorf("cannot reproject a dataset from a different backend")
	}
	if sds.closed {
		return nil, fmt.Errorf("cannot reproject a closed dataset")
	}

	srcGT, err := src.GeoTransform()
	if err != nil {
		return nil, err
	}
	srcInv, err := raster.InvertGeoTransform(srcGT)
	if err != nil {
		return nil, fmt.Errorf("failed to reproject: %v", err)
	}

	out := &Image{
		Width:        width,
		Height:       height,
		Bands:        make([][]float64, bands),
		Transform:    gt,
		HasTransform: true,
		CRS:          crs,
		NoData:       sds.img.NoData,
	}
	for i := range out.Bands {
		out.Bands[i] = make([]float64, width*height)
	}

	srcCRS := sds.img.CRS
	srcBands := len(sds.img.Bands)

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			// Center of the output pixel in the destination CRS.
			dx, dy := raster.ApplyGeoTransform(gt, float64(col)+0.5, float64(row)+0.5)

			sx, sy := dx, dy
			if srcCRS != crs {
				xs := []float64{dx}
				ys := []float64{dy}
				if err := b.TransformPoints(crs, srcCRS, xs, ys); err != nil {
					return nil, err
				}
				sx, sy = xs[0], ys[0]
			}

			px, py := raster.ApplyGeoTransform(srcInv, sx, sy)
			ix, iy := int(math.Floor(px)), int(math.Floor(py))
			if ix < 0 || iy < 0 || ix >= sds.img.Width || iy >= sds.img.Height {
				continue
			}

			for bi := 0; bi < bands && bi < srcBands; bi++ {
				out.Bands[bi][row*width+col] = sds.img.Bands[bi][iy*sds.img.Width+ix]
			}
		}
	}

	return &dataset{img: out}, nil
}

func (b *Backend) TransformPoints(srcCRS, dstCRS string, xs, ys []float64) error {
	if srcCRS == dstCRS {
		return nil
	}

	switch {
	case isGeographicCode(srcCRS) && dstCRS == CRSMercator:
		for i := range xs {
			xs[i], ys[i] = lonLatToMercator(xs[i], ys[i])
		}
	case srcCRS == CRSMercator && isGeographicCode(dstCRS):
		for i := range xs {
			xs[i], ys[i] = mercatorToLonLat(xs[i], ys[i])
		}
	default:
		return fmt.Errorf("unsupported transform %q -> %q", srcCRS, dstCRS)
	}
	return nil
}

func (b *Backend) IsGeographic(crs string) (bool, error) {
	if crs == "" {
		return false, fmt.Errorf("empty CRS")
	}
	if isGeographicCode(crs) {
		return true, nil
	}
	return false, nil
}

func isGeographicCode(crs string) bool {
	return crs == CRSGeographic || strings.HasPrefix(crs, "GEOGCS")
}

func lonLatToMercator(lon, lat float64) (x, y float64) {
	x = lon * originShift / 180.0
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * originShift / 180.0
	return
}

func mercatorToLonLat(x, y float64) (lon, lat float64) {
	lon = (x / originShift) * 180.0
	lat = (y / originShift) * 180.0
	lat = 180.0 / math.Pi * (2.0*math.Atan(math.Exp(lat*math.Pi/180.0)) - math.Pi/2.0)
	return
}

type dataset struct {
	img    *Image
	closed bool
}

func (d *dataset) Close() error {
	d.closed = true
	return nil
}

func (d *dataset) Size() (int, int) { return d.img.Width, d.img.Height }

func (d *dataset) BandCount() int { return len(d.img.Bands) }

func (d *dataset) GeoTransform() ([6]float64, error) {
	if !d.img.HasTransform {
		return [6]float64{0, 1, 0, 0, 0, 1}, nil
	}
	return d.img.Transform, nil
}

func (d *dataset) Projection() string { return d.img.CRS }

func (d *dataset) NoData(band int) (float64, bool) {
	nd, ok := d.img.NoData[band]
	return nd, ok
}

func (d *dataset) DataType(band int) raster.DataType {
	if t, ok := d.img.Types[band]; ok {
		return t
	}
	return raster.TypeFloat64
}

func (d *dataset) BandMetadata(band int, key string) (string, bool) {
	items, ok := d.img.Metadata[band]
	if !ok {
		return "", false
	}
	v, ok := items[key]
	return v, ok
}

func (d *dataset) ReadWindow(band int, srcX, srcY, srcW, srcH, dstW, dstH int, mode raster.ResampleMode) ([]float64, error) {
	if band < 1 || band > len(d.img.Bands) {
		return nil, fmt.Errorf("failed to read band %d: no such band", band)
	}
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return nil, fmt.Errorf("failed to read band %d: empty window", band)
	}

	data := d.img.Bands[band-1]
	out := make([]float64, dstW*dstH)

	// Nearest-neighbor resampling from the source rectangle onto the
	// destination grid. Bilinear requests degrade to nearest; the test
	// double only guarantees the sample positions, not the kernel.
	for row := 0; row < dstH; row++ {
		sy := srcY + int(math.Floor((float64(row)+0.5)*float64(srcH)/float64(dstH)))
		for col := 0; col < dstW; col++ {
			sx := srcX + int(math.Floor((float64(col)+0.5)*float64(srcW)/float64(dstW)))
			if sx < 0 || sy < 0 || sx >= d.img.Width || sy >= d.img.Height {
				continue
			}
			out[row*dstW+col] = data[sy*d.img.Width+sx]
		}
	}

	return out, nil
}

func (d *dataset) ComputeMinMax(band int, approxOK bool) (float64, float64, error) {
	if band < 1 || band > len(d.img.Bands) {
		return 0, 0, fmt.Errorf("failed to compute statistics for band %d: no such band", band)
	}

	nd, hasND := d.img.NoData[band]
	min, max := math.Inf(1), math.Inf(-1)
	valid := false
	for _, v := range d.img.Bands[band-1] {
		if hasND && math.Abs(v-nd) < 1e-10 {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
		valid = true
	}
	if !valid {
		return 0, 0, fmt.Errorf("failed to compute statistics for band %d: no valid pixels", band)
	}
	return min, max, nil
}
