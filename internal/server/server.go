// Package server implements the HTTP surface of the tile engine. Every
// handler opens its own dataset handle from the path cache and closes it
// before returning; handles are never shared between requests.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/heimdallmaps/heimdall/internal/api"
	"github.com/heimdallmaps/heimdall/internal/catalog"
	"github.com/heimdallmaps/heimdall/internal/raster"
	"github.com/heimdallmaps/heimdall/internal/store"
)

// Server holds the engine's shared collaborators. The path cache is the
// only mutable state; the backend and STAC client are stateless.
type Server struct {
	startTime time.Time
	version   string
	backend   raster.Backend
	cache     *store.PathCache
	stac      *catalog.Client
}

// NewServer creates a server instance.
func NewServer(version string, backend raster.Backend, cache *store.PathCache) *Server {
	return &Server{
		startTime: time.Now(),
		version:   version,
		backend:   backend,
		cache:     cache,
		stac:      catalog.New(),
	}
}

// Routes mounts every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.GetHealth)

	r.Route("/rasters", func(r chi.Router) {
		r.Post("/", s.OpenRaster)
		r.Post("/remote", s.OpenRemoteRaster)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetRasterMetadata)
			r.Delete("/", s.CloseRaster)
			r.Get("/tiles/{z}/{x}/{y}", s.GetTile)
			r.Get("/tiles/{z}/{x}/{y}/rgb", s.GetRGBTile)
			r.Get("/stats", s.GetStats)
			r.Get("/histogram", s.GetHistogram)
			r.Get("/query", s.QueryValue)
			r.Post("/profile", s.GetProfile)
		})
	})

	r.Get("/tiles/cross/{z}/{x}/{y}", s.GetCrossTile)

	r.Route("/stac", func(r chi.Router) {
		r.Get("/catalog", s.GetStacCatalog)
		r.Get("/collections", s.GetStacCollections)
		r.Post("/search", s.SearchStacItems)
	})
}

// GetHealth implements the health check endpoint.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    int(time.Since(s.startTime).Seconds()),
		Version:   s.version,
	})
}

// openByID resolves an id through the path cache and opens a fresh
// dataset handle for this request. On failure the error response has
// already been written and the returned dataset is nil.
func (s *Server) openByID(w http.ResponseWriter, r *http.Request, id string) (raster.Dataset, string) {
	path, err := s.cache.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, r, http.StatusNotFound, api.CodeNotFound, "dataset not found: "+id)
		} else {
			s.writeError(w, r, http.StatusInternalServerError, api.CodeInternalError, err.Error())
		}
		return nil, ""
	}

	ds, err := s.backend.Open(path)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return nil, ""
	}
	return ds, path
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, status, api.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}
