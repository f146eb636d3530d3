// Package geocode resolves coordinates to street addresses via the
// Nominatim reverse geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fixthesign/fixthesign/app/models"
)

const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Nominatim's usage policy requires an identifying User-Agent.
const userAgent = "FixTheSign/1.0"

// Client queries a Nominatim instance for reverse geocoding.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the given Nominatim base URL. An empty
// base URL selects the public openstreetmap.org instance.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Reverse resolves a coordinate to a human-readable address. An empty
// display name means Nominatim knows nothing about the location; that is
// not an error.
func (c *Client) Reverse(ctx context.Context, loc models.Location) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(loc.Lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var payload struct {
		DisplayName string `json:"display_name"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("reverse geocode: decode response: %w", err)
	}
	if payload.Error != "" {
		// Nominatim reports "Unable to geocode" for open water and such.
		return "", nil
	}

	return payload.DisplayName, nil
}
