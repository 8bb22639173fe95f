// Package gdal implements the raster capability interface on top of GDAL
// via github.com/airbusgeo/godal. This is the only package that imports the
// native library; everything above it sees raster.Backend and
// raster.Dataset.
//
// GDAL dataset handles are not safe for concurrent use, so this backend
// hands out one handle per Open call and never caches them.
package gdal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"

	"github.com/heimdallmaps/heimdall/internal/raster"
)

var registerOnce sync.Once

// Backend opens datasets through GDAL. The zero value is ready to use.
type Backend struct{}

func New() *Backend {
	registerOnce.Do(func() {
		godal.RegisterAll()
		configureRemoteAccess()
	})
	return &Backend{}
}

// configureRemoteAccess sets the GDAL options needed for efficient
// /vsicurl/ access to remote COGs. GDAL picks these up from the
// environment.
func configureRemoteAccess() {
	for key, value := range map[string]string{
		"GDAL_HTTP_USERAGENT":          "heimdall/0.1 GDAL",
		"GDAL_DISABLE_READDIR_ON_OPEN": "EMPTY_DIR",
		"GDAL_HTTP_CONNECTTIMEOUT":     "30",
		"GDAL_CACHEMAX":                "512",
	} {
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func (b *Backend) Open(path string) (raster.Dataset, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %q: %v", path, err)
	}
	return &dataset{ds: ds}, nil
}

func (b *Backend) Reproject(src raster.Dataset, crs string, gt [6]float64, width, height, bands int) (raster.Dataset, error) {
	sds, ok := src.(*dataset)
	if !ok {
		return nil, fmt.Errorf("cannot reproject a dataset from a different backend")
	}

	out, err := godal.Create(godal.Memory, "", bands, godal.Float64, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create output dataset: %v", err)
	}

	if err := out.SetGeoTransform(gt); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to set geotransform: %v", err)
	}

	sr, err := parseCRS(crs)
	if err != nil {
		out.Close()
		return nil, err
	}
	defer sr.Close()

	if err := out.SetSpatialRef(sr); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to set projection: %v", err)
	}

	if err := out.WarpInto([]*godal.Dataset{sds.ds}, nil); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to reproject: %v", err)
	}

	return &dataset{ds: out}, nil
}

func (b *Backend) TransformPoints(srcCRS, dstCRS string, xs, ys []float64) error {
	src, err := parseCRS(srcCRS)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := parseCRS(dstCRS)
	if err != nil {
		return err
	}
	defer dst.Close()

	tr, err := godal.NewTransform(src, dst)
	if err != nil {
		return fmt.Errorf("failed to create coordinate transform: %v", err)
	}
	defer tr.Close()

	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return fmt.Errorf("failed to transform coordinates: %v", err)
	}
	return nil
}

func (b *Backend) IsGeographic(crs string) (bool, error) {
	sr, err := parseCRS(crs)
	if err != nil {
		return false, err
	}
	defer sr.Close()
	return sr.Geographic(), nil
}

// parseCRS accepts either an "EPSG:nnnn" code or a WKT string.
func parseCRS(crs string) (*godal.SpatialRef, error) {
	if code, ok := strings.CutPrefix(crs, "EPSG:"); ok {
		epsg, err := strconv.Atoi(code)
		if err != nil {
			return nil, fmt.Errorf("invalid EPSG code %q", crs)
		}
		sr, err := godal.NewSpatialRefFromEPSG(epsg)
		if err != nil {
			return nil, fmt.Errorf("failed to create EPSG:%d spatial reference: %v", epsg, err)
		}
		return sr, nil
	}

	sr, err := godal.NewSpatialRefFromWKT(crs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse projection: %v", err)
	}
	return sr, nil
}

type dataset struct {
	ds *godal.Dataset
}

func (d *dataset) Close() error { return d.ds.Close() }

func (d *dataset) Size() (int, int) {
	st := d.ds.Structure()
	return st.SizeX, st.SizeY
}

func (d *dataset) BandCount() int {
	return d.ds.Structure().NBands
}

func (d *dataset) GeoTransform() ([6]float64, error) {
	gt, err := d.ds.GeoTransform()
	if err != nil {
		return [6]float64{}, fmt.Errorf("failed to get geotransform: %v", err)
	}
	return gt, nil
}

func (d *dataset) Projection() string {
	sr := d.ds.SpatialRef()
	if sr == nil {
		return ""
	}
	wkt, err := sr.WKT()
	if err != nil {
		return ""
	}
	return wkt
}

func (d *dataset) NoData(band int) (float64, bool) {
	bands := d.ds.Bands()
	if band < 1 || band > len(bands) {
		return 0, false
	}
	return bands[band-1].NoData()
}

func (d *dataset) DataType(band int) raster.DataType {
	bands := d.ds.Bands()
	if band < 1 || band > len(bands) {
		return raster.TypeUnknown
	}
	switch bands[band-1].Structure().DataType {
	case godal.Byte:
		return raster.TypeUInt8
	case godal.Int8:
		return raster.TypeInt8
	case godal.UInt16:
		return raster.TypeUInt16
	case godal.Int16:
		return raster.TypeInt16
	case godal.UInt32:
		return raster.TypeUInt32
	case godal.Int32:
		return raster.TypeInt32
	case godal.Float32:
		return raster.TypeFloat32
	case godal.Float64:
		return raster.TypeFloat64
	default:
		return raster.TypeUnknown
	}
}

func (d *dataset) BandMetadata(band int, key string) (string, bool) {
	bands := d.ds.Bands()
	if band < 1 || band > len(bands) {
		return "", false
	}
	v := bands[band-1].Metadata(key)
	return v, v != ""
}

func (d *dataset) ReadWindow(band int, srcX, srcY, srcW, srcH, dstW, dstH int, mode raster.ResampleMode) ([]float64, error) {
	bands := d.ds.Bands()
	if band < 1 || band > len(bands) {
		return nil, fmt.Errorf("failed to get band %d: no such band", band)
	}

	alg := godal.Nearest
	if mode == raster.ResampleBilinear {
		alg = godal.Bilinear
	}

	buf := make([]float64, dstW*dstH)
	err := bands[band-1].Read(srcX, srcY, buf, dstW, dstH,
		godal.Window(srcW, srcH), godal.Resampling(alg))
	if err != nil {
		return nil, fmt.Errorf("failed to read band %d: %v", band, err)
	}
	return buf, nil
}

func (d *dataset) ComputeMinMax(band int, approxOK bool) (float64, float64, error) {
	bands := d.ds.Bands()
	if band < 1 || band > len(bands) {
		return 0, 0, fmt.Errorf("failed to get band %d: no such band", band)
	}

	var opts []godal.StatisticsOption
	if approxOK {
		opts = append(opts, godal.Approximate())
	}

	stats, err := bands[band-1].ComputeStatistics(opts...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute statistics: %v", err)
	}
	return stats.Min, stats.Max, nil
}
