package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"

	"github.com/heimdallmaps/heimdall/internal/api"
	"github.com/heimdallmaps/heimdall/internal/profile"
	"github.com/heimdallmaps/heimdall/internal/stats"
)

// GetStats returns band statistics. With ?band=N only that band is
// computed; otherwise all bands are, omitting any band whose statistics
// fail.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	band, err := queryInt(r, "band", 0)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	ds, _ := s.openByID(w, r, chi.URLParam(r, "id"))
	if ds == nil {
		return
	}
	defer ds.Close()

	if band > 0 {
		result, err := stats.Compute(ds, band)
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, result)
		return
	}
	s.writeJSON(w, http.StatusOK, stats.ComputeAll(ds))
}

// GetHistogram returns the binned value distribution of one band.
// Query parameters: band (default 1) and bins (default 256).
func (s *Server) GetHistogram(w http.ResponseWriter, r *http.Request) {
	band, err := queryInt(r, "band", 1)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}
	bins, err := queryInt(r, "bins", 0)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	ds, _ := s.openByID(w, r, chi.URLParam(r, "id"))
	if ds == nil {
		return
	}
	defer ds.Close()

	h, err := stats.ComputeHistogram(ds, band, bins)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, h)
}

// QueryValue samples every band at one position, given either as
// ?lon=&lat= (geographic) or ?x=&y= (source pixels). Positions outside
// the raster extent return a normal result with in_bounds false.
func (s *Server) QueryValue(w http.ResponseWriter, r *http.Request) {
	lon, hasLon, err := queryFloat(r, "lon")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}
	lat, hasLat, err := queryFloat(r, "lat")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}
	x, hasX, err := queryFloat(r, "x")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}
	y, hasY, err := queryFloat(r, "y")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	ds, _ := s.openByID(w, r, chi.URLParam(r, "id"))
	if ds == nil {
		return
	}
	defer ds.Close()

	var result *profile.QueryResult
	switch {
	case hasLon && hasLat:
		result, err = profile.QueryGeo(s.backend, ds, lon, lat)
	case hasX && hasY:
		result, err = profile.QueryPixel(ds, x, y)
	default:
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError,
			"either lon/lat or x/y query parameters are required")
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// GetProfile samples band 1 along a polyline of waypoints.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	var req api.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeInvalidJSON, "Invalid JSON in request body")
		return
	}
	if len(req.Waypoints) < 2 {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "at least two waypoints are required")
		return
	}
	if req.Space != "" && req.Space != "geographic" && req.Space != "pixel" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError,
			"space must be \"geographic\" or \"pixel\"")
		return
	}

	ds, _ := s.openByID(w, r, chi.URLParam(r, "id"))
	if ds == nil {
		return
	}
	defer ds.Close()

	line := make(orb.LineString, len(req.Waypoints))
	for i, wp := range req.Waypoints {
		line[i] = orb.Point{wp[0], wp[1]}
	}

	var result *profile.Result
	var err error
	if req.Space == "pixel" {
		result, err = profile.AlongPixels(ds, line, req.Samples)
	} else {
		result, err = profile.AlongGeographic(s.backend, ds, line, req.Samples)
	}
	if err != nil {
		if errors.Is(err, profile.ErrZeroLengthLine) {
			s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
