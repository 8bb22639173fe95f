// Package api defines the JSON request and response shapes of the HTTP
// surface. Analysis responses (statistics, histograms, profiles, point
// queries) are serialized straight from their engine types; this package
// holds everything else.
package api

import (
	"time"

	"github.com/heimdallmaps/heimdall/internal/stats"
)

// HealthStatus values for the health endpoint.
const (
	Healthy = "healthy"
)

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    int       `json:"uptime_seconds"`
	Version   string    `json:"version"`
}

// OpenRasterRequest registers a local raster file.
type OpenRasterRequest struct {
	Path string `json:"path"`
}

// OpenRemoteRasterRequest registers a remote raster by STAC asset href.
type OpenRemoteRasterRequest struct {
	Href string `json:"href"`
}

// RasterMetadata describes a registered raster. Bounds are
// [minX, minY, maxX, maxY]; for georeferenced sources they are lon/lat,
// for plain images they are synthetic pixel-space units.
type RasterMetadata struct {
	ID              string            `json:"id"`
	Path            string            `json:"path"`
	Width           int               `json:"width"`
	Height          int               `json:"height"`
	Bands           int               `json:"bands"`
	Bounds          [4]float64        `json:"bounds"`
	NativeBounds    [4]float64        `json:"native_bounds"`
	Projection      string            `json:"projection"`
	PixelSize       [2]float64        `json:"pixel_size"`
	NoData          *float64          `json:"nodata,omitempty"`
	BandStats       []stats.BandStats `json:"band_stats"`
	IsGeoreferenced bool              `json:"is_georeferenced"`
}

// ProfileRequest samples raster values along a polyline. Space selects
// how waypoints are interpreted: "geographic" (lon/lat, the default) or
// "pixel" (source pixel coordinates).
type ProfileRequest struct {
	Waypoints [][2]float64 `json:"waypoints"`
	Samples   int          `json:"samples"`
	Space     string       `json:"space,omitempty"`
}

// StacSearchRequest forwards a search to a STAC API.
type StacSearchRequest struct {
	URL         string    `json:"url"`
	Collections []string  `json:"collections,omitempty"`
	BBox        []float64 `json:"bbox,omitempty"`
	Datetime    string    `json:"datetime,omitempty"`
	Limit       int       `json:"limit,omitempty"`
}

// Error codes used across all endpoints.
const (
	CodeInvalidJSON     = "INVALID_JSON"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeSourceError     = "SOURCE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
