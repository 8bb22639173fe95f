package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultSearchLimit applies when a search does not set one.
const DefaultSearchLimit = 20

// Client talks to one or more STAC APIs.
type Client struct {
	client *http.Client

	// signEndpoint overrides the Planetary Computer SAS signing endpoint;
	// empty means the production one.
	signEndpoint string
}

// New creates a client with a sensible timeout for catalog metadata
// requests.
func New() *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Connect fetches the root catalog document of a STAC API.
func (c *Client) Connect(ctx context.Context, url string) (*Catalog, error) {
	var catalog Catalog
	if err := c.getJSON(ctx, strings.TrimRight(url, "/"), &catalog); err != nil {
		return nil, fmt.Errorf("failed to connect to STAC API: %v", err)
	}
	return &catalog, nil
}

// Collections lists every collection the catalog offers.
func (c *Client) Collections(ctx context.Context, url string) ([]Collection, error) {
	var resp collectionsResponse
	if err := c.getJSON(ctx, strings.TrimRight(url, "/")+"/collections", &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch collections: %v", err)
	}
	return resp.Collections, nil
}

// Search POSTs the parameters to the catalog's /search endpoint.
func (c *Client) Search(ctx context.Context, url string, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultSearchLimit
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search parameters: %v", err)
	}

	searchURL := strings.TrimRight(url, "/") + "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search STAC items: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("STAC search failed: HTTP %d - %s", resp.StatusCode, preview(data))
	}

	var result SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %v. Response preview: %s", err, preview(data))
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func preview(data []byte) string {
	if len(data) > 200 {
		return string(data[:200]) + "..."
	}
	return string(data)
}
