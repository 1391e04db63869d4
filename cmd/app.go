package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/UnknownOlympus/waypoint/internal/config"
	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/internal/handler"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/service"
	"github.com/UnknownOlympus/waypoint/internal/store"
)

// app holds the dependencies shared by all commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *store.PointStore
	points   *service.PointsService
	health   handler.HealthCheck
	close    func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	// Create a separate registry for metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  appMetrics,
		close:    func() error { return nil },
	}

	slot, err := a.openSlot(ctx)
	if err != nil {
		return nil, err
	}

	a.store = store.NewPointStore(slot, appMetrics, logger)
	a.points = service.NewPointsService(logger, a.store)

	return a, nil
}

func (a *app) openSlot(ctx context.Context) (store.Slot, error) {
	storage := a.cfg.Storage

	switch storage.Driver {
	case config.DriverMemory:
		a.logger.WarnContext(ctx, "Using in-memory storage, points are lost on exit")
		return store.NewMemorySlot(nil), nil

	case config.DriverSQLite:
		path := storage.Path
		if path == "" {
			defaultPath, err := store.DefaultFilePath("waypoint")
			if err != nil {
				return nil, err
			}
			path = filepath.Join(filepath.Dir(defaultPath), "waypoint.db")
		}

		db, err := store.OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		a.close = db.Close
		a.health = db.PingContext
		a.logger.DebugContext(ctx, "Using SQLite storage", "path", path, "slot", storage.Slot)

		return store.NewSQLiteSlot(db, storage.Slot), nil

	default:
		path := storage.Path
		if path == "" {
			defaultPath, err := store.DefaultFilePath(storage.Slot)
			if err != nil {
				return nil, err
			}
			path = defaultPath
		}
		a.logger.DebugContext(ctx, "Using file storage", "path", path)

		return store.NewFileSlot(path), nil
	}
}

// newImporter builds the geocoding provider and the import pipeline around it.
func (a *app) newImporter(ctx context.Context) (*service.Importer, error) {
	geo := a.cfg.Geocoder

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(geo.Provider),
		APIKey:    geo.APIKey,
		RateLimit: geo.RateLimit,
		BaseURL:   geo.BaseURL,
		UserAgent: geo.UserAgent,
		Language:  geo.Language,
		Region:    geo.Region,
		Timeout:   geo.Timeout,
		Logger:    a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding provider: %w", err)
	}

	a.logger.InfoContext(ctx, "Geocoding provider initialized", "type", geo.Provider)

	resolver := geocoding.NewResolver(
		provider,
		geo.Provider, // Provider name for metrics
		geo.CountryQualifier,
		geo.MinInterval,
		a.metrics,
		a.logger,
	)

	return service.NewImporter(a.logger, resolver, a.store, a.metrics), nil
}

func (a *app) Close() {
	if err := a.close(); err != nil {
		a.logger.Error("Failed to close storage", "error", err)
	}
}
