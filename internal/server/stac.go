package server

import (
	"encoding/json"
	"net/http"

	"github.com/heimdallmaps/heimdall/internal/api"
	"github.com/heimdallmaps/heimdall/internal/catalog"
)

// GetStacCatalog fetches the root document of the STAC API named by
// ?url=.
func (s *Server) GetStacCatalog(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "url is required")
		return
	}

	cat, err := s.stac.Connect(r.Context(), url)
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, api.CodeSourceError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, cat)
}

// GetStacCollections lists the collections of the STAC API named by
// ?url=.
func (s *Server) GetStacCollections(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "url is required")
		return
	}

	cols, err := s.stac.Collections(r.Context(), url)
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, api.CodeSourceError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, cols)
}

// SearchStacItems forwards an item search to the STAC API named in the
// request body.
func (s *Server) SearchStacItems(w http.ResponseWriter, r *http.Request) {
	var req api.StacSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeInvalidJSON, "Invalid JSON in request body")
		return
	}
	if req.URL == "" {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "url is required")
		return
	}

	result, err := s.stac.Search(r.Context(), req.URL, catalog.SearchParams{
		Collections: req.Collections,
		BBox:        req.BBox,
		Datetime:    req.Datetime,
		Limit:       req.Limit,
	})
	if err != nil {
		s.writeError(w, r, http.StatusBadGateway, api.CodeSourceError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
