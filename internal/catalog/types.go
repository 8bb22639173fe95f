// Package catalog is a client for STAC (SpatioTemporal Asset Catalog)
// APIs. It browses catalogs and collections, searches items, and resolves
// asset hrefs into paths the raster library can stream directly.
package catalog

import "encoding/json"

// Catalog is the root entity of a STAC API.
type Catalog struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	StacVersion string   `json:"stac_version,omitempty"`
	ConformsTo  []string `json:"conformsTo,omitempty"`
}

// Collection groups related items, e.g. all scenes of one sensor product.
type Collection struct {
	ID          string     `json:"id"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description"`
	License     string     `json:"license,omitempty"`
	Extent      *Extent    `json:"extent,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
	Providers   []Provider `json:"providers,omitempty"`
	StacVersion string     `json:"stac_version,omitempty"`
}

// Extent is the spatial and temporal coverage of a collection.
type Extent struct {
	Spatial  *SpatialExtent  `json:"spatial,omitempty"`
	Temporal *TemporalExtent `json:"temporal,omitempty"`
}

// SpatialExtent holds bounding boxes as [west, south, east, north].
type SpatialExtent struct {
	BBox [][]float64 `json:"bbox,omitempty"`
}

// TemporalExtent holds [start, end] intervals; nil means open-ended.
type TemporalExtent struct {
	Interval [][]*string `json:"interval,omitempty"`
}

// Provider is an organization associated with a collection.
type Provider struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
	URL   string   `json:"url,omitempty"`
}

type collectionsResponse struct {
	Collections []Collection `json:"collections"`
}

// Item is one spatiotemporal asset bundle, e.g. a single satellite scene.
type Item struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Collection string           `json:"collection,omitempty"`
	Geometry   json.RawMessage  `json:"geometry"`
	BBox       []float64        `json:"bbox,omitempty"`
	Properties ItemProperties   `json:"properties"`
	Assets     map[string]Asset `json:"assets"`
	Links      []Link           `json:"links,omitempty"`
}

// ItemProperties carries the acquisition metadata of an item. Fields not
// modeled here stay available through Extra.
type ItemProperties struct {
	Datetime   string                     `json:"datetime,omitempty"`
	CloudCover *float64                   `json:"eo:cloud_cover,omitempty"`
	Extra      map[string]json.RawMessage `json:"-"`
}

func (p *ItemProperties) UnmarshalJSON(data []byte) error {
	type plain ItemProperties
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &p.Extra); err != nil {
		return err
	}
	delete(p.Extra, "datetime")
	delete(p.Extra, "eo:cloud_cover")
	return nil
}

// Asset is one downloadable file of an item, typically a COG.
type Asset struct {
	Href        string   `json:"href"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	MediaType   string   `json:"type,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	EOBands     []EOBand `json:"eo:bands,omitempty"`
}

// EOBand is band metadata from the eo:bands extension.
type EOBand struct {
	Name             string   `json:"name,omitempty"`
	CommonName       string   `json:"common_name,omitempty"`
	CenterWavelength *float64 `json:"center_wavelength,omitempty"`
}

// Link points at a related resource.
type Link struct {
	Href  string `json:"href"`
	Rel   string `json:"rel"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// SearchParams filter an item search; zero values mean no filtering on
// that criterion.
type SearchParams struct {
	Collections []string        `json:"collections,omitempty"`
	BBox        []float64       `json:"bbox,omitempty"`
	Datetime    string          `json:"datetime,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Query       json.RawMessage `json:"query,omitempty"`
	Filter      json.RawMessage `json:"filter,omitempty"`
	FilterLang  string          `json:"filter-lang,omitempty"`
}

// SearchResult is the FeatureCollection returned by /search.
type SearchResult struct {
	Type           string         `json:"type"`
	Features       []Item         `json:"features"`
	NumberMatched  *uint64        `json:"numberMatched,omitempty"`
	NumberReturned *uint64        `json:"numberReturned,omitempty"`
	Context        *SearchContext `json:"context,omitempty"`
}

// SearchContext is pagination metadata some APIs attach to results.
type SearchContext struct {
	Matched  *uint64 `json:"matched,omitempty"`
	Returned *uint64 `json:"returned,omitempty"`
	Limit    *int    `json:"limit,omitempty"`
}
