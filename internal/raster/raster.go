// Package raster defines the capability interface the engine uses to talk
// to a raster-access library. The engine packages (extract, stats, profile)
// depend only on Backend and Dataset, so the concrete implementation, the
// GDAL-backed one in raster/gdal or the in-memory one in raster/memory,
// can be swapped without touching any rendering or sampling logic.
//
// Dataset handles are not safe to share between concurrent operations.
// Callers open a handle from its path at the start of an operation and
// close it before returning; handles are never stored in shared state.
package raster

// ResampleMode selects the resampling kernel for window reads.
type ResampleMode int

const (
	ResampleNearest ResampleMode = iota
	ResampleBilinear
)

// DataType identifies the storage type of a band.
type DataType int

const (
	TypeUnknown DataType = iota
	TypeUInt8
	TypeInt8
	TypeUInt16
	TypeInt16
	TypeUInt32
	TypeInt32
	TypeFloat32
	TypeFloat64
)

// Backend opens datasets and performs the coordinate operations that need
// projection machinery.
type Backend interface {
	// Open opens the dataset at path. The returned handle belongs to the
	// calling operation and must be closed by it.
	Open(path string) (Dataset, error)

	// Reproject allocates an in-memory dataset with the given shape and
	// georeferencing and warps all bands of src into it. crs is either an
	// "EPSG:nnnn" code or a WKT string.
	Reproject(src Dataset, crs string, geoTransform [6]float64, width, height, bands int) (Dataset, error)

	// TransformPoints converts coordinate arrays from srcCRS to dstCRS in
	// place, in traditional GIS (x=lon, y=lat) axis order.
	TransformPoints(srcCRS, dstCRS string, xs, ys []float64) error

	// IsGeographic reports whether the CRS uses geographic (lon/lat)
	// coordinates.
	IsGeographic(crs string) (bool, error)
}

// Dataset is one open raster source. Bands are 1-based, following the
// underlying library convention.
type Dataset interface {
	Close() error

	Size() (width, height int)
	BandCount() int

	// GeoTransform returns the 6-coefficient affine mapping from pixel
	// indices to the dataset's native CRS.
	GeoTransform() ([6]float64, error)

	// Projection returns the native CRS as WKT, or "" when the dataset
	// carries none.
	Projection() string

	// NoData returns the nodata sentinel for a band, if one is set.
	NoData(band int) (float64, bool)

	DataType(band int) DataType

	// BandMetadata looks up a metadata item on a band (e.g. the
	// STATISTICS_MINIMUM key embedded by some writers).
	BandMetadata(band int, key string) (string, bool)

	// ReadWindow reads the source rectangle (srcX, srcY, srcW, srcH) of a
	// band resampled to a dstW x dstH float grid in row-major order.
	ReadWindow(band int, srcX, srcY, srcW, srcH, dstW, dstH int, mode ResampleMode) ([]float64, error)

	// ComputeMinMax returns the band's value range. With approxOK the
	// implementation may sample overviews instead of every pixel.
	ComputeMinMax(band int, approxOK bool) (min, max float64, err error)
}
