package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/internal/handler"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/service"
	"github.com/UnknownOlympus/waypoint/internal/store"
	"github.com/UnknownOlympus/waypoint/test/mocks"
)

type testServer struct {
	router   chi.Router
	resolver *mocks.AddressResolver
	store    *store.PointStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.Default()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	resolver := mocks.NewAddressResolver(t)
	pointStore := store.NewPointStore(store.NewMemorySlot(nil), m, logger)

	h := handler.New(
		service.NewImporter(logger, resolver, pointStore, m),
		service.NewPointsService(logger, pointStore),
		logger,
	)
	r := chi.NewRouter()
	r.Use(handler.CORS([]string{"http://localhost:5173"}))
	h.Register(r)
	handler.RegisterMonitoring(r, logger, reg, nil)

	return &testServer{router: r, resolver: resolver, store: pointStore}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func seed(t *testing.T, s *testServer, id string) models.PointRecord {
	t.Helper()
	record := models.PointRecord{
		ID:            id,
		Location:      models.Coordinates{Latitude: 52.53, Longitude: 13.38},
		SourceAddress: "Musterstraße 1, 10115 Berlin",
		ReasonText:    "Wartung",
		Priority:      models.PriorityLow,
	}
	require.NoError(t, s.store.Upsert(context.Background(), record))
	return record
}

const documentText = "Lieferadresse: Musterstraße 1, 10115 Berlin\nZRD: 263816\nGerätenummer: SN-4471\nGrund: Wartung"

func TestImportEndpoint(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		s := newTestServer(t)
		s.resolver.On("Resolve", mock.Anything, "Musterstraße 1, 10115 Berlin").Return(&models.GeoResult{
			Coordinates: models.Coordinates{Latitude: 52.53, Longitude: 13.38},
			DisplayName: "Berlin",
		}, nil).Once()

		rec := s.do(t, http.MethodPost, "/imports", documentText)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		var record models.PointRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
		assert.Equal(t, "263816", record.ReferenceCode)
		assert.Equal(t, models.PriorityLow, record.Priority)
		assert.Len(t, s.store.List(context.Background()), 1)
	})

	t.Run("address override", func(t *testing.T) {
		s := newTestServer(t)
		s.resolver.On("Resolve", mock.Anything, "Hauptstraße 5, 80331 München").Return(&models.GeoResult{
			Coordinates: models.Coordinates{Latitude: 48.13, Longitude: 11.57},
		}, nil).Once()

		rec := s.do(t, http.MethodPost, "/imports?address=Hauptstra%C3%9Fe+5%2C+80331+M%C3%BCnchen", "ZRD: 1")

		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("no text", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/imports", " \f ")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "NoTextExtracted", body["error"])
		assert.Equal(t, false, body["retryable"])
	})

	t.Run("address not found", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/imports", "ZRD: 263816")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "AddressNotFound", body["error"])
		assert.Contains(t, body["message"], "Lieferadresse")
	})

	t.Run("unresolved", func(t *testing.T) {
		s := newTestServer(t)
		s.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, geocoding.ErrUnresolved).Once()

		rec := s.do(t, http.MethodPost, "/imports", documentText)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "AddressUnresolved", decodeError(t, rec)["error"])
		assert.Empty(t, s.store.List(context.Background()))
	})

	t.Run("resolver unavailable is retryable", func(t *testing.T) {
		s := newTestServer(t)
		s.resolver.On("Resolve", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: %w", geocoding.ErrUnavailable, assert.AnError)).Once()

		rec := s.do(t, http.MethodPost, "/imports", documentText)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "ResolverUnavailable", body["error"])
		assert.Equal(t, true, body["retryable"])
	})
}

func TestPointsEndpoints(t *testing.T) {
	t.Run("list empty store", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodGet, "/points", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("list", func(t *testing.T) {
		s := newTestServer(t)
		seed(t, s, "a")
		seed(t, s, "b")

		rec := s.do(t, http.MethodGet, "/points", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var points []models.PointRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
		assert.Len(t, points, 2)
	})

	t.Run("edit", func(t *testing.T) {
		s := newTestServer(t)
		original := seed(t, s, "a")

		rec := s.do(t, http.MethodPut, "/points/a", `{"ticket":"T-7","priority":"red"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		stored, ok := s.store.Get(context.Background(), "a")
		require.True(t, ok)
		want := original
		want.Ticket = "T-7"
		want.Priority = models.PriorityHigh
		assert.Equal(t, want, stored)
	})

	t.Run("edit unknown id", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPut, "/points/missing", `{"ticket":"T-7"}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "PointNotFound", decodeError(t, rec)["error"])
	})

	t.Run("edit with invalid priority", func(t *testing.T) {
		s := newTestServer(t)
		seed(t, s, "a")

		rec := s.do(t, http.MethodPut, "/points/a", `{"priority":"urgent"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "InvalidRequest", decodeError(t, rec)["error"])
	})

	t.Run("clear", func(t *testing.T) {
		s := newTestServer(t)
		seed(t, s, "a")

		rec := s.do(t, http.MethodDelete, "/points", "")

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, s.store.List(context.Background()))
	})
}

func TestPointsGeoJSON(t *testing.T) {
	s := newTestServer(t)
	seed(t, s, "a")

	rec := s.do(t, http.MethodGet, "/points.geojson", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "a", fc.Features[0].ID)
	assert.Equal(t, []float64{13.38, 52.53}, fc.Features[0].Geometry.Coordinates)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/points/a", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/points", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMonitoringEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "waypoint_")

	t.Run("failing storage check", func(t *testing.T) {
		r := chi.NewRouter()
		handler.RegisterMonitoring(r, slog.Default(), prometheus.NewRegistry(), func(context.Context) error {
			return assert.AnError
		})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
