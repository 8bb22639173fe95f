package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestConnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("path = %q, want /", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "earth-search",
			"type": "Catalog",
			"title": "Earth Search",
			"description": "A STAC API of public datasets",
			"stac_version": "1.0.0",
			"conformsTo": ["https://api.stacspec.org/v1.0.0/core"]
		}`))
	}))
	defer srv.Close()

	cat, err := New().Connect(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if cat.ID != "earth-search" || cat.Type != "Catalog" {
		t.Errorf("catalog = %+v", cat)
	}
	if len(cat.ConformsTo) != 1 {
		t.Errorf("got %d conformance URIs, want 1", len(cat.ConformsTo))
	}
}

func TestConnectErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := New().Connect(context.Background(), srv.URL); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}

func TestCollections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections" {
			t.Errorf("path = %q, want /collections", r.URL.Path)
		}
		w.Write([]byte(`{"collections": [
			{"id": "sentinel-2-l2a", "description": "Sentinel-2 L2A",
			 "extent": {"spatial": {"bbox": [[-180, -90, 180, 90]]}}},
			{"id": "cop-dem-glo-30", "description": "Copernicus DEM"}
		]}`))
	}))
	defer srv.Close()

	cols, err := New().Collections(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("got %d collections, want 2", len(cols))
	}
	if cols[0].ID != "sentinel-2-l2a" {
		t.Errorf("first collection = %q", cols[0].ID)
	}
	if cols[0].Extent == nil || cols[0].Extent.Spatial == nil {
		t.Error("spatial extent not parsed")
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("%s %s, want POST /search", r.Method, r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode search body: %v", err)
		}
		if body["limit"] != float64(DefaultSearchLimit) {
			t.Errorf("limit = %v, want default %d", body["limit"], DefaultSearchLimit)
		}
		if body["datetime"] != "2024-01-01/2024-01-31" {
			t.Errorf("datetime = %v", body["datetime"])
		}

		w.Write([]byte(`{
			"type": "FeatureCollection",
			"features": [{
				"id": "S2A_TILE_1",
				"type": "Feature",
				"collection": "sentinel-2-l2a",
				"geometry": {"type": "Point", "coordinates": [0, 0]},
				"properties": {"datetime": "2024-01-15T10:30:00Z", "eo:cloud_cover": 3.4, "platform": "sentinel-2a"},
				"assets": {
					"visual": {"href": "https://example.com/visual.tif", "type": "image/tiff"}
				}
			}],
			"numberReturned": 1
		}`))
	}))
	defer srv.Close()

	result, err := New().Search(context.Background(), srv.URL, SearchParams{
		Collections: []string{"sentinel-2-l2a"},
		Datetime:    "2024-01-01/2024-01-31",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(result.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(result.Features))
	}
	item := result.Features[0]
	if item.ID != "S2A_TILE_1" {
		t.Errorf("item id = %q", item.ID)
	}
	if item.Properties.CloudCover == nil || *item.Properties.CloudCover != 3.4 {
		t.Errorf("cloud cover = %v, want 3.4", item.Properties.CloudCover)
	}
	if _, ok := item.Properties.Extra["platform"]; !ok {
		t.Error("unmodeled property lost during parsing")
	}
	if item.Assets["visual"].Href != "https://example.com/visual.tif" {
		t.Errorf("asset href = %q", item.Assets["visual"].Href)
	}
}

func TestSearchErrorIncludesBodyPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection does not exist", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := New().Search(context.Background(), srv.URL, SearchParams{})
	if err == nil || !strings.Contains(err.Error(), "collection does not exist") {
		t.Errorf("error %v should carry the response body", err)
	}
}

func TestResolveAssetHrefPlain(t *testing.T) {
	got, err := New().ResolveAssetHref(context.Background(), "https://example.com/scene.tif")
	if err != nil {
		t.Fatalf("ResolveAssetHref: %v", err)
	}
	if got != "/vsicurl/https://example.com/scene.tif" {
		t.Errorf("resolved = %q", got)
	}
}

func TestResolveAssetHrefStripsExistingPrefix(t *testing.T) {
	got, err := New().ResolveAssetHref(context.Background(), " /vsicurl/https://example.com/scene.tif ")
	if err != nil {
		t.Fatalf("ResolveAssetHref: %v", err)
	}
	if got != "/vsicurl/https://example.com/scene.tif" {
		t.Errorf("resolved = %q, double prefix not avoided", got)
	}
}

func TestResolveAssetHrefS3(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{
			"public bucket",
			"s3://naip-visualization/ny/2022/item.tif",
			"/vsicurl/https://naip-visualization.s3.amazonaws.com/ny/2022/item.tif",
		},
		{
			"sentinel-cogs pins us-west-2",
			"s3://sentinel-cogs/sentinel-s2-l2a-cogs/B04.tif",
			"/vsicurl/https://sentinel-cogs.s3.us-west-2.amazonaws.com/sentinel-s2-l2a-cogs/B04.tif",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().ResolveAssetHref(context.Background(), tt.href)
			if err != nil {
				t.Fatalf("ResolveAssetHref: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolved = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveAssetHrefRejectsRequesterPays(t *testing.T) {
	for _, bucket := range []string{
		"sentinel-s2-l2a", "usgs-landsat", "sentinel-s1-l1c",
		"sentinel-s2-l1c", "copernicus-dem-30m", "copernicus-dem-90m",
	} {
		_, err := New().ResolveAssetHref(context.Background(), "s3://"+bucket+"/some/key.tif")
		if err == nil || !strings.Contains(err.Error(), "requester-pays") {
			t.Errorf("bucket %s: got %v, want requester-pays rejection", bucket, err)
		}
	}
}

func TestResolveAssetHrefSignsAzureBlobs(t *testing.T) {
	signed := "https://sentinel2l2a01.blob.core.windows.net/c/B04.tif?st=2024&sig=abc"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("href"); !strings.Contains(got, "blob.core.windows.net") {
			t.Errorf("sign request href = %q", got)
		}
		json.NewEncoder(w).Encode(signResponse{Href: signed})
	}))
	defer srv.Close()

	c := New()
	c.signEndpoint = srv.URL

	got, err := c.ResolveAssetHref(context.Background(), "https://sentinel2l2a01.blob.core.windows.net/c/B04.tif")
	if err != nil {
		t.Fatalf("ResolveAssetHref: %v", err)
	}
	if got != "/vsicurl/"+signed {
		t.Errorf("resolved = %q, want signed URL", got)
	}
}

func TestResolveAssetHrefSigningFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New()
	c.signEndpoint = srv.URL

	_, err := c.ResolveAssetHref(context.Background(), "https://x.blob.core.windows.net/c/B04.tif")
	if err == nil || !strings.Contains(err.Error(), "signing failed") {
		t.Errorf("got %v, want signing failure", err)
	}
}
