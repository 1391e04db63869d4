package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "Musterstraße 1, 10115 Berlin, Deutschland", req.URL.Query().Get("q"))
				assert.Equal(t, "jsonv2", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, "de,en", req.URL.Query().Get("accept-language"))
				assert.Equal(t, geocoding.DefaultUserAgent, req.Header.Get("User-Agent"))

				return jsonResponse(http.StatusOK,
					`[{"lat":"52.5310","lon":"13.3847","display_name":"1, Musterstraße, Mitte, Berlin, 10115, Deutschland"}]`,
				), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		results, err := provider.Geocode(ctx, "Musterstraße 1, 10115 Berlin, Deutschland")

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InEpsilon(t, 52.5310, results[0].Latitude, 0.0001)
		assert.InEpsilon(t, 13.3847, results[0].Longitude, 0.0001)
		assert.Equal(t, "1, Musterstraße, Mitte, Berlin, 10115, Deutschland", results[0].DisplayName)
	})

	t.Run("custom endpoint and options", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "geo.internal", req.URL.Host)
				assert.Equal(t, "3", req.URL.Query().Get("limit"))
				assert.Equal(t, "en", req.URL.Query().Get("accept-language"))
				assert.Equal(t, "test-agent", req.Header.Get("User-Agent"))

				return jsonResponse(http.StatusOK,
					`[{"lat":"1.5","lon":"2.5","display_name":"a"},{"lat":"3.5","lon":"4.5","display_name":"b"}]`,
				), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{
			BaseURL:   "http://geo.internal/search",
			UserAgent: "test-agent",
			Language:  "en",
			Limit:     3,
		}, logger)
		results, err := provider.Geocode(ctx, "somewhere")

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].DisplayName, "ranking order is preserved")
		assert.Equal(t, "b", results[1].DisplayName)
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		results, err := provider.Geocode(ctx, "invalid address")

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		results, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, results)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `invalid json`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		results, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, results)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"invalid","lon":"13.38"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		results, err := provider.Geocode(ctx, "some address")

		require.Nil(t, results)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"52.53","lon":"invalid"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		results, err := provider.Geocode(ctx, "some address")

		require.Nil(t, results)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		results, err := provider.Geocode(ctx, "some address")

		require.ErrorIs(t, err, assert.AnError)
		require.Nil(t, results)
		assert.Contains(t, err.Error(), "failed to execute geocoding request")
	})

	t.Run("context cancellation", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, req.Context().Err()
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		results, err := provider.Geocode(newCtx, "some address")

		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, results)
	})

	t.Run("single request per call", func(t *testing.T) {
		requestCount := 0
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				requestCount++
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, geocoding.NominatimOptions{}, logger)
		_, err := provider.Geocode(ctx, "Hauptstraße 5, 80331 München")

		require.NoError(t, err)
		assert.Equal(t, 1, requestCount, "no fallback queries are sent")
	})
}

func TestNewNominatimProvider(t *testing.T) {
	logger := slog.Default()

	provider := geocoding.NewNominatimProvider(geocoding.NominatimOptions{}, logger)

	require.NotNil(t, provider)
}
