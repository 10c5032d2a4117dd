// Package places wraps the Google Places web service (text search + place details).
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// detailFields is the field mask requested on detail lookups.
const detailFields = "name,formatted_address,formatted_phone_number,website,types,geometry"

// Client performs Google Places API operations.
type Client interface {
	// TextSearch searches for businesses matching the free-text query in the
	// given location. A non-OK API status is returned as an error naming the
	// status; ZERO_RESULTS yields an empty slice.
	TextSearch(ctx context.Context, query, location string) ([]Place, error)
	// Details fetches extended fields for a place. Lookups are best-effort:
	// callers should treat any error as "no details available".
	Details(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// Place represents one result from a text search.
type Place struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	FormattedAddress string    `json:"formatted_address"`
	Types            []string  `json:"types"`
	Rating           float64   `json:"rating"`
	BusinessStatus   string    `json:"business_status"`
	Geometry         *Geometry `json:"geometry"`
}

// Geometry holds a place's location.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceDetails holds the extended fields from a details lookup.
type PlaceDetails struct {
	Name                 string   `json:"name"`
	FormattedAddress     string   `json:"formatted_address"`
	FormattedPhoneNumber string   `json:"formatted_phone_number"`
	Website              string   `json:"website"`
	Types                []string `json:"types"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLanguage sets the response language (default "de").
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		c.language = lang
	}
}

// WithRateLimit sets the request rate limit in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: "de",
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type textSearchResponse struct {
	Results      []Place `json:"results"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
}

func (c *httpClient) TextSearch(ctx context.Context, query, location string) ([]Place, error) {
	params := url.Values{
		"query":    {fmt.Sprintf("%s in %s", query, location)},
		"language": {c.language},
		"key":      {c.apiKey},
	}

	var resp textSearchResponse
	if err := c.get(ctx, "/place/textsearch/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK", "ZERO_RESULTS":
	default:
		if resp.ErrorMessage != "" {
			return nil, eris.Errorf("places: text search status %s: %s", resp.Status, resp.ErrorMessage)
		}
		return nil, eris.Errorf("places: text search status %s", resp.Status)
	}

	return resp.Results, nil
}

type detailsResponse struct {
	Result *PlaceDetails `json:"result"`
	Status string        `json:"status"`
}

func (c *httpClient) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{
		"place_id": {placeID},
		"fields":   {detailFields},
		"key":      {c.apiKey},
	}

	var resp detailsResponse
	if err := c.get(ctx, "/place/details/json", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "OK" || resp.Result == nil {
		return nil, eris.Errorf("places: details status %s", resp.Status)
	}

	return resp.Result, nil
}

// get issues a rate-limited GET and decodes the JSON response body into out.
func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "places: rate limit wait")
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}

	return nil
}
