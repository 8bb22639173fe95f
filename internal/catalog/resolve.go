package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultSignEndpoint = "https://planetarycomputer.microsoft.com/api/sas/v1/sign"

// requesterPaysBuckets hold data only accessible with AWS credentials and
// requester-pays billing enabled; streaming from them anonymously fails
// with an opaque HTTP error, so they are rejected up front.
var requesterPaysBuckets = map[string]string{
	"sentinel-s2-l2a":    "Sentinel-2 original JP2 files",
	"usgs-landsat":       "USGS Landsat Collection 2",
	"sentinel-s1-l1c":    "Sentinel-1 data",
	"sentinel-s2-l1c":    "Sentinel-2 L1C data",
	"copernicus-dem-30m": "Copernicus DEM",
	"copernicus-dem-90m": "Copernicus DEM",
}

// ResolveAssetHref turns a STAC asset href into a /vsicurl/ path the
// raster library can stream. Azure blob URLs are signed through the
// Planetary Computer SAS endpoint, s3:// URLs are rewritten to their
// public HTTPS form, and requester-pays buckets are rejected with a
// descriptive error.
func (c *Client) ResolveAssetHref(ctx context.Context, href string) (string, error) {
	href = strings.TrimSpace(href)
	href = strings.TrimSpace(strings.TrimPrefix(href, "/vsicurl/"))

	if strings.Contains(href, ".blob.core.windows.net") {
		signed, err := c.signPlanetaryComputerURL(ctx, href)
		if err != nil {
			return "", err
		}
		href = signed
	}

	href, err := rewriteS3Href(href)
	if err != nil {
		return "", err
	}

	return "/vsicurl/" + href, nil
}

// rewriteS3Href converts s3://bucket/key to the bucket's public HTTPS
// endpoint. Non-s3 hrefs pass through unchanged.
func rewriteS3Href(href string) (string, error) {
	if !strings.HasPrefix(href, "s3://") {
		return href, nil
	}

	parts := strings.SplitN(strings.TrimPrefix(href, "s3://"), "/", 2)
	if len(parts) != 2 {
		return href, nil
	}
	bucket, key := parts[0], parts[1]

	if product, ok := requesterPaysBuckets[bucket]; ok {
		return "", fmt.Errorf(
			"asset is stored in a requester-pays S3 bucket (%s, %s): AWS credentials are required; try an asset on public COG storage",
			bucket, product)
	}

	// sentinel-cogs lives in us-west-2 and is not reachable through the
	// region-less endpoint.
	if bucket == "sentinel-cogs" {
		return fmt.Sprintf("https://%s.s3.us-west-2.amazonaws.com/%s", bucket, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key), nil
}

type signResponse struct {
	Href string `json:"href"`
}

// signPlanetaryComputerURL exchanges an Azure blob URL for one carrying a
// short-lived SAS token.
func (c *Client) signPlanetaryComputerURL(ctx context.Context, href string) (string, error) {
	endpoint := c.signEndpoint
	if endpoint == "" {
		endpoint = defaultSignEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?href="+url.QueryEscape(href), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Planetary Computer signing failed: HTTP %d", resp.StatusCode)
	}

	var signed signResponse
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("failed to parse signed URL: %v", err)
	}
	return signed.Href, nil
}
