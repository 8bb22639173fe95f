package server

import (
	"fmt"
	"image"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heimdallmaps/heimdall/internal/api"
	"github.com/heimdallmaps/heimdall/internal/encode"
	"github.com/heimdallmaps/heimdall/internal/extract"
	"github.com/heimdallmaps/heimdall/internal/raster"
	"github.com/heimdallmaps/heimdall/pkg/tile"
)

// GetTile renders a single-band grayscale tile.
//
// Query parameters: band (default 1), min/max/gamma (stretch, default
// derived from the band's value range), size (default 256), format
// (png|jpeg|webp, default png) and quality for the lossy formats.
func (s *Server) GetTile(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoord(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	band, err := queryInt(r, "band", 1)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}
	size, err := queryInt(r, "size", tile.DefaultSize)
	if err != nil || size <= 0 {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "size must be a positive integer")
		return
	}

	enc, err := s.encoderFromQuery(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	ds, _ := s.openByID(w, r, chi.URLParam(r, "id"))
	if ds == nil {
		return
	}
	defer ds.Close()

	if band < 1 || band > ds.BandCount() {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError,
			fmt.Sprintf("band %d out of range (dataset has %d)", band, ds.BandCount()))
		return
	}

	stretch, err := stretchFromQuery(r, "", ds, band)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	img, err := extract.Grayscale(s.backend, ds, extract.Request{
		Coord: coord,
		Band:  band,
		Size:  size,
	}, stretch)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}

	s.writeImage(w, r, enc, img)
}

// GetRGBTile renders a three-band composite from one dataset.
//
// Query parameters: r/g/b select the bands (defaults 1, 2, 3); each
// channel takes its stretch from r_min/r_max/r_gamma and so on.
func (s *Server) GetRGBTile(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoord(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}
	size, err := queryInt(r, "size", tile.DefaultSize)
	if err != nil || size <= 0 {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "size must be a positive integer")
		return
	}
	enc, err := s.encoderFromQuery(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	ds, _ := s.openByID(w, r, chi.URLParam(r, "id"))
	if ds == nil {
		return
	}
	defer ds.Close()

	var bands [3]int
	var stretches [3]extract.StretchParams
	for i, ch := range []string{"r", "g", "b"} {
		band, err := queryInt(r, ch, i+1)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
			return
		}
		if band < 1 || band > ds.BandCount() {
			s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError,
				fmt.Sprintf("band %d out of range (dataset has %d)", band, ds.BandCount()))
			return
		}
		stretch, err := stretchFromQuery(r, ch+"_", ds, band)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
			return
		}
		bands[i] = band
		stretches[i] = stretch
	}

	img, err := extract.RGB(s.backend, ds, coord, size, bands, stretches)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}

	s.writeImage(w, r, enc, img)
}

// GetCrossTile renders a composite whose channels come from three
// independent datasets.
//
// Query parameters: red_id/green_id/blue_id name the datasets; each
// channel takes red_band, red_min, red_max, red_gamma and so on.
func (s *Server) GetCrossTile(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoord(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}
	size, err := queryInt(r, "size", tile.DefaultSize)
	if err != nil || size <= 0 {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, "size must be a positive integer")
		return
	}
	enc, err := s.encoderFromQuery(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
		return
	}

	var channels [3]extract.Channel
	for i, name := range []string{"red", "green", "blue"} {
		id := r.URL.Query().Get(name + "_id")
		if id == "" {
			s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, name+"_id is required")
			return
		}

		ds, _ := s.openByID(w, r, id)
		if ds == nil {
			return
		}
		defer ds.Close()

		band, err := queryInt(r, name+"_band", 1)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
			return
		}
		stretch, err := stretchFromQuery(r, name+"_", ds, band)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, api.CodeValidationError, err.Error())
			return
		}
		channels[i] = extract.Channel{Dataset: ds, Band: band, Stretch: stretch}
	}

	img, err := extract.CrossRGB(s.backend, coord, size, channels)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeSourceError, err.Error())
		return
	}

	s.writeImage(w, r, enc, img)
}

func (s *Server) writeImage(w http.ResponseWriter, r *http.Request, enc encode.Encoder, img image.Image) {
	data, err := enc.Encode(img)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, api.CodeInternalError, err.Error())
		return
	}

	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("Error writing tile response: %v", err)
	}
}

func parseCoord(r *http.Request) (tile.Coord, error) {
	z, err := strconv.Atoi(chi.URLParam(r, "z"))
	if err != nil || z < 0 {
		return tile.Coord{}, fmt.Errorf("invalid zoom level %q", chi.URLParam(r, "z"))
	}
	x, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		return tile.Coord{}, fmt.Errorf("invalid tile x %q", chi.URLParam(r, "x"))
	}
	y, err := strconv.Atoi(chi.URLParam(r, "y"))
	if err != nil {
		return tile.Coord{}, fmt.Errorf("invalid tile y %q", chi.URLParam(r, "y"))
	}
	return tile.Coord{Z: z, X: x, Y: y}, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func queryFloat(r *http.Request, name string) (float64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, true, nil
}

// stretchFromQuery builds the stretch for one channel from prefixed query
// parameters. When min and max are not both given, the stretch derives
// from the band's value range instead.
func stretchFromQuery(r *http.Request, prefix string, ds raster.Dataset, band int) (extract.StretchParams, error) {
	min, hasMin, err := queryFloat(r, prefix+"min")
	if err != nil {
		return extract.StretchParams{}, err
	}
	max, hasMax, err := queryFloat(r, prefix+"max")
	if err != nil {
		return extract.StretchParams{}, err
	}
	gamma, hasGamma, err := queryFloat(r, prefix+"gamma")
	if err != nil {
		return extract.StretchParams{}, err
	}
	if hasGamma && gamma <= 0 {
		return extract.StretchParams{}, fmt.Errorf("%sgamma must be positive", prefix)
	}

	var stretch extract.StretchParams
	if hasMin && hasMax {
		stretch = extract.StretchParams{Min: min, Max: max, Gamma: 1.0}
	} else {
		stretch = extract.AutoStretch(ds, band)
	}
	if hasGamma {
		stretch.Gamma = gamma
	}
	return stretch, nil
}

func (s *Server) encoderFromQuery(r *http.Request) (encode.Encoder, error) {
	quality, err := queryInt(r, "quality", 0)
	if err != nil {
		return nil, err
	}
	return encode.NewEncoder(r.URL.Query().Get("format"), quality)
}
