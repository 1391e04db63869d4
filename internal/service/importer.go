// Package service coordinates extraction, geocoding and storage of imported work orders.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/extractor"
	"github.com/UnknownOlympus/waypoint/internal/geocoding"
	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/store"
)

// AddressResolver turns an address into its top-ranked location.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (*models.GeoResult, error)
}

// PointRepository is the keyed point collection.
type PointRepository interface {
	List(ctx context.Context) []models.PointRecord
	Upsert(ctx context.Context, record models.PointRecord) error
	Modify(
		ctx context.Context,
		id string,
		fn func(models.PointRecord) models.PointRecord,
	) (models.PointRecord, bool, error)
	Clear(ctx context.Context) error
}

// State is the phase of the import pipeline.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateResolving
	StatePersisted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateExtracting:
		return "Extracting"
	case StateResolving:
		return "Resolving"
	case StatePersisted:
		return "Persisted"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Importer runs one document through extraction, resolution and persistence.
// Only one import runs at a time.
type Importer struct {
	log      *slog.Logger     // Logger for logging import activities
	resolver AddressResolver  // Address to location lookup
	repo     PointRepository  // Storage for created records
	metrics  *metrics.Metrics // Metrics for tracking import outcomes

	running sync.Mutex
	stateMu sync.RWMutex
	state   State

	newID func() string
	now   func() time.Time
}

// NewImporter creates an Importer.
func NewImporter(log *slog.Logger, resolver AddressResolver, repo PointRepository, metrics *metrics.Metrics) *Importer {
	return &Importer{
		log:      log,
		resolver: resolver,
		repo:     repo,
		metrics:  metrics,
		state:    StateIdle,
		newID:    store.NewID,
		now:      time.Now,
	}
}

// State returns the current pipeline state.
func (im *Importer) State() State {
	im.stateMu.RLock()
	defer im.stateMu.RUnlock()

	return im.state
}

// Import extracts the delivery address and metadata from doc, resolves the address and
// stores a new point. Extraction and resolution failures are returned as *ImportError
// and leave the store untouched.
func (im *Importer) Import(ctx context.Context, doc models.RawDocumentText) (*models.PointRecord, error) {
	return im.run(ctx, doc, "")
}

// ImportWithAddress is Import with an operator-supplied address replacing the extracted one.
// The other extracted fields are kept. A blank address behaves like Import.
func (im *Importer) ImportWithAddress(
	ctx context.Context,
	doc models.RawDocumentText,
	address string,
) (*models.PointRecord, error) {
	return im.run(ctx, doc, strings.TrimSpace(address))
}

func (im *Importer) run(ctx context.Context, doc models.RawDocumentText, address string) (*models.PointRecord, error) {
	if !im.running.TryLock() {
		im.metrics.ImportsProcessed.WithLabelValues("busy").Inc()
		return nil, ErrImportInProgress
	}
	defer im.running.Unlock()

	im.metrics.ImportsInFlight.Inc()
	defer im.metrics.ImportsInFlight.Dec()
	defer im.setState(ctx, StateIdle)

	im.setState(ctx, StateExtracting)

	if doc.Empty() && address == "" {
		return nil, im.fail(ctx, &ImportError{Kind: KindNoTextExtracted})
	}

	extracted := extractor.Extract(doc.Text())
	if address != "" {
		im.log.DebugContext(ctx, "Using operator-supplied address", "extracted", extracted.Address, "supplied", address)
		extracted.Address = address
	}
	if !extracted.HasAddress() {
		return nil, im.fail(ctx, &ImportError{Kind: KindAddressNotFound})
	}

	im.log.DebugContext(ctx, "Fields extracted",
		"address", extracted.Address,
		"reference_code", extracted.ReferenceCode,
		"device_id", extracted.DeviceID,
		"reason", extracted.ReasonText)

	im.setState(ctx, StateResolving)

	geo, err := im.resolver.Resolve(ctx, extracted.Address)
	if err != nil {
		return nil, im.fail(ctx, resolveError(extracted.Address, err))
	}

	record := models.NewPointRecord(im.newID(), extracted, *geo, im.now())
	if err = im.repo.Upsert(ctx, record); err != nil {
		im.setState(ctx, StateFailed)
		im.metrics.ImportsProcessed.WithLabelValues("storage_error").Inc()
		im.log.ErrorContext(ctx, "Failed to store point", "address", extracted.Address, "error", err)
		return nil, fmt.Errorf("failed to store point: %w", err)
	}

	im.setState(ctx, StatePersisted)
	im.metrics.ImportsProcessed.WithLabelValues("success").Inc()
	im.log.InfoContext(ctx, "Point imported",
		"id", record.ID,
		"address", record.SourceAddress,
		"lat", record.Location.Latitude,
		"lon", record.Location.Longitude)

	return &record, nil
}

func resolveError(address string, err error) *ImportError {
	switch {
	case errors.Is(err, geocoding.ErrUnresolved):
		return &ImportError{Kind: KindAddressUnresolved, Address: address, Err: err}
	case errors.Is(err, geocoding.ErrEmptyAddress):
		return &ImportError{Kind: KindAddressNotFound, Address: address, Err: err}
	default:
		return &ImportError{Kind: KindResolverUnavailable, Address: address, Err: err}
	}
}

func (im *Importer) fail(ctx context.Context, importErr *ImportError) error {
	im.setState(ctx, StateFailed)
	im.metrics.ImportsProcessed.WithLabelValues(importErr.Kind.statusLabel()).Inc()
	im.log.WarnContext(ctx, "Import failed",
		"kind", string(importErr.Kind),
		"address", importErr.Address,
		"retryable", importErr.Retryable(),
		"error", importErr.Err)

	return importErr
}

func (im *Importer) setState(ctx context.Context, next State) {
	im.stateMu.Lock()
	prev := im.state
	im.state = next
	im.stateMu.Unlock()

	im.log.DebugContext(ctx, "Import state changed", "from", prev.String(), "to", next.String())
}
