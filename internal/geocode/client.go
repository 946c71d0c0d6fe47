// Package geocode wraps a Nominatim-style geocoding service. Every failure
// mode (short input, network error, empty result set) is soft: callers get
// Found=false and branch on that flag instead of handling errors.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// userAgent identifies this client per the upstream usage policy.
const userAgent = "go-inventory-cloud/1.0"

// minQueryLen: queries shorter than this are not worth a network round trip.
const minQueryLen = 4

// Result is a forward geocoding outcome. Its only effect is to populate an
// item's coordinates; it is never persisted on its own.
type Result struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Found     bool    `json:"found"`
}

// ReverseResult is a reverse geocoding outcome.
type ReverseResult struct {
	Address string `json:"address"`
	Found   bool   `json:"found"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
}

type Option func(*Client)

// WithBaseURL overrides the geocoding service URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchResult mirrors the upstream search response entries.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// ForwardGeocode resolves a free-text address to coordinates, taking the
// first candidate match. Never returns an error to the caller.
func (c *Client) ForwardGeocode(ctx context.Context, address string) Result {
	if len(address) < minQueryLen {
		return Result{}
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	var results []searchResult
	if err := c.get(ctx, "/search", q, &results); err != nil {
		return Result{}
	}
	if len(results) == 0 {
		return Result{}
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return Result{}
	}

	return Result{Latitude: lat, Longitude: lng, Found: true}
}

// reverseResponse mirrors the upstream reverse response.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// ReverseGeocode resolves coordinates to a display address. Never returns an
// error to the caller; Address is empty when not found.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) ReverseResult {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")

	var resp reverseResponse
	if err := c.get(ctx, "/reverse", q, &resp); err != nil {
		return ReverseResult{}
	}
	if resp.Error != "" || resp.DisplayName == "" {
		return ReverseResult{}
	}

	return ReverseResult{Address: resp.DisplayName, Found: true}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// FallbackAddress formats raw coordinates for display when reverse geocoding
// comes up empty, so a located item never shows a blank location.
func FallbackAddress(lat, lng float64) string {
	return fmt.Sprintf("Lat: %.4f, Lng: %.4f", lat, lng)
}
