package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/heimdallmaps/heimdall/internal/api"
	"github.com/heimdallmaps/heimdall/internal/raster"
	"github.com/heimdallmaps/heimdall/internal/stats"
	"github.com/heimdallmaps/heimdall/pkg/tile"
)

// OpenRaster registers a local raster file and returns its metadata. The
// file is opened once here to validate it and describe it; subsequent
// requests reopen it by the returned id.
func (s *Server) OpenRaster(w http.ResponseWriter, r *http.Request) {
	var req api.OpenRasterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeInvalidJSON, "Invalid JSON in request body")
		return
	}
	if req.Path == "" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "path is required")
		return
	}

	ds, err := s.backend.Open(req.Path)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeSourceError, err.Error())
		return
	}
	defer ds.Close()

	id := uuid.NewString()
	meta, err := s.describe(id, req.Path, ds, stats.ComputeAll(ds))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}

	s.cache.Put(id, req.Path)
	s.writeJSON(w, http.StatusCreated, meta)
}

// OpenRemoteRaster registers a remote raster by STAC asset href. The href
// is resolved into a streamable path first; band statistics come from
// embedded metadata or data-type defaults so no pixel data is fetched.
func (s *Server) OpenRemoteRaster(w http.ResponseWriter, r *http.Request) {
	var req api.OpenRemoteRasterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeInvalidJSON, "Invalid JSON in request body")
		return
	}
	if req.Href == "" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "href is required")
		return
	}

	path, err := s.stac.ResolveAssetHref(r.Context(), req.Href)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	ds, err := s.backend.Open(path)
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, api.CodeSourceError, err.Error())
		return
	}
	defer ds.Close()

	id := uuid.NewString()
	meta, err := s.describe(id, path, ds, stats.DefaultAll(ds))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}

	s.cache.Put(id, path)
	s.writeJSON(w, http.StatusCreated, meta)
}

// GetRasterMetadata re-describes a registered raster.
func (s *Server) GetRasterMetadata(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ds, path := s.openByID(w, r, id)
	if ds == nil {
		return
	}
	defer ds.Close()

	meta, err := s.describe(id, path, ds, stats.ComputeAll(ds))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, meta)
}

// CloseRaster drops a raster's registration. No dataset handle is held
// open for it, so this only removes the id from the path cache.
func (s *Server) CloseRaster(w http.ResponseWriter, r *http.Request) {
	s.cache.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) describe(id, path string, ds raster.Dataset, bandStats []stats.BandStats) (*api.RasterMetadata, error) {
	width, height := ds.Size()
	georeferenced := raster.IsGeoreferenced(ds)

	native, err := raster.NativeBounds(ds)
	if err != nil {
		return nil, err
	}

	var bounds orb.Bound
	if georeferenced {
		bounds, err = raster.GeoBounds(s.backend, ds)
		if err != nil {
			return nil, err
		}
	} else {
		bounds = tile.NewPixelSpace(width, height).Bounds()
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, err
	}

	meta := &api.RasterMetadata{
		ID:              id,
		Path:            path,
		Width:           width,
		Height:          height,
		Bands:           ds.BandCount(),
		Bounds:          boundArray(bounds),
		NativeBounds:    boundArray(native),
		Projection:      ds.Projection(),
		PixelSize:       [2]float64{gt[1], gt[5]},
		BandStats:       bandStats,
		IsGeoreferenced: georeferenced,
	}
	if nodata, ok := ds.NoData(1); ok {
		meta.NoData = &nodata
	}
	return meta, nil
}

func boundArray(b orb.Bound) [4]float64 {
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}
