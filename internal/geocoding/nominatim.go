package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

const (
	// NominatimBaseURL is the public OpenStreetMap search endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	// DefaultUserAgent identifies this application, as required by the Nominatim usage policy.
	DefaultUserAgent = "Waypoint-Workorder-Map/1.0 (https://github.com/UnknownOlympus/waypoint)"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Nominatim API
	log     *slog.Logger // Logger for logging operations
	// userAgent is required by Nominatim usage policy
	userAgent string
	language  string // accept-language sent with every request
	limit     int    // number of candidates requested
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents one entry of the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat         string `json:"lat"`          // Latitude as string
	Lon         string `json:"lon"`          // Longitude as string
	DisplayName string `json:"display_name"` // Full matched location
}

// ErrNominatimInvalidCoords is returned when a result carries coordinates that do not parse.
var ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")

// NominatimOptions tunes the Nominatim provider. Zero values fall back to the public defaults.
type NominatimOptions struct {
	BaseURL   string
	UserAgent string
	Language  string
	Limit     int
	Timeout   time.Duration
}

// NewNominatimProvider creates a new Nominatim geocoding provider.
func NewNominatimProvider(opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	const defaultTimeout = 10 * time.Second
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return NewNominatimProviderWithClient(&http.Client{Timeout: opts.Timeout}, opts, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = NominatimBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Language == "" {
		opts.Language = "de,en"
	}
	if opts.Limit <= 0 {
		opts.Limit = 1
	}

	return &NominatimProvider{
		client:    client,
		baseURL:   opts.BaseURL,
		log:       log,
		userAgent: opts.UserAgent,
		language:  opts.Language,
		limit:     opts.Limit,
	}
}

// Geocode sends a single search request for the query and returns the ranked matches.
// It respects Nominatim's usage policy by including a User-Agent header; pacing the
// requests is left to the caller.
func (np *NominatimProvider) Geocode(ctx context.Context, query string) ([]models.GeoResult, error) {
	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(np.limit))
	params.Set("accept-language", np.language)
	reqURL.RawQuery = params.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	np.log.DebugContext(ctx, "Nominatim raw response", "body", string(body))

	var entries []nominatimResponse
	if err = json.Unmarshal(body, &entries); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	results := make([]models.GeoResult, 0, len(entries))
	for _, entry := range entries {
		lat, errLat := strconv.ParseFloat(entry.Lat, 64)
		if errLat != nil {
			return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, entry.Lat)
		}
		lon, errLon := strconv.ParseFloat(entry.Lon, 64)
		if errLon != nil {
			return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, entry.Lon)
		}

		results = append(results, models.GeoResult{
			Coordinates: models.Coordinates{Latitude: lat, Longitude: lon},
			DisplayName: entry.DisplayName,
		})
	}

	np.log.DebugContext(ctx, "Nominatim search finished", "query", query, "matches", len(results))

	return results, nil
}
