// Package store persists point records as one JSON array inside a single durable slot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidRecord is returned by Upsert for records without an id or with invalid coordinates.
var ErrInvalidRecord = errors.New("invalid point record")

var (
	// ErrSlotUnreadable means the slot could not be loaded at all.
	ErrSlotUnreadable = errors.New("stored points are unreadable")
	// ErrSlotCorrupt means the slot was loaded but does not decode as a point collection.
	ErrSlotCorrupt = errors.New("stored points are corrupt")
)

// PointStore is the keyed collection of PointRecords. Every write re-serializes the whole
// collection into the slot. List and Get see an unreadable slot as an empty collection.
// Writes never replace content they could not read: a load failure aborts the write and
// undecodable content is quarantined in the slot before it is overwritten.
type PointStore struct {
	mu      sync.Mutex
	slot    Slot
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewPointStore creates a PointStore on top of slot.
func NewPointStore(slot Slot, metrics *metrics.Metrics, log *slog.Logger) *PointStore {
	return &PointStore{slot: slot, metrics: metrics, log: log}
}

// NewID returns a fresh record id: a UUIDv7, so ids sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// List returns all stored records in insertion order. It never returns nil.
func (s *PointStore) List(ctx context.Context) []models.PointRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(ctx)
}

// Get returns the record with the given id.
func (s *PointStore) Get(ctx context.Context, id string) (models.PointRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.read(ctx) {
		if record.ID == id {
			return record, true
		}
	}

	return models.PointRecord{}, false
}

// Upsert replaces the record with the same id in place or appends it.
func (s *PointStore) Upsert(ctx context.Context, record models.PointRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if !record.Location.Valid() {
		return fmt.Errorf("%w: coordinates (%v, %v) out of range",
			ErrInvalidRecord, record.Location.Latitude, record.Location.Longitude)
	}
	if !record.Priority.Valid() {
		record.Priority = models.PriorityLow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readForWrite(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range records {
		if records[i].ID == record.ID {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, record)
	}

	if err = s.write(ctx, records); err != nil {
		return err
	}

	s.log.DebugContext(ctx, "Point stored", "id", record.ID, "replaced", replaced, "total", len(records))

	return nil
}

// Modify applies fn to the record with the given id and stores the result, all under one
// lock. It reports false when no such record exists. The id and a valid location of the
// original record are kept whatever fn returns.
func (s *PointStore) Modify(
	ctx context.Context,
	id string,
	fn func(models.PointRecord) models.PointRecord,
) (models.PointRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readForWrite(ctx)
	if err != nil {
		return models.PointRecord{}, false, err
	}

	idx := slices.IndexFunc(records, func(r models.PointRecord) bool { return r.ID == id })
	if idx < 0 {
		return models.PointRecord{}, false, nil
	}

	updated := fn(records[idx])
	updated.ID = id
	if !updated.Location.Valid() {
		updated.Location = records[idx].Location
	}
	if !updated.Priority.Valid() {
		updated.Priority = models.PriorityLow
	}
	records[idx] = updated

	if err = s.write(ctx, records); err != nil {
		return models.PointRecord{}, true, err
	}

	s.log.DebugContext(ctx, "Point modified", "id", id)

	return updated, true, nil
}

// Clear empties the collection.
func (s *PointStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(ctx, []models.PointRecord{}); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "All points cleared")

	return nil
}

func (s *PointStore) read(ctx context.Context) []models.PointRecord {
	records, _, err := s.load(ctx)
	if err != nil {
		s.metrics.StorageRecoveries.Inc()
		s.metrics.StoredPoints.Set(0)
		s.log.WarnContext(ctx, "StorageReadCorrupt: stored points are unreadable, continuing with an empty collection",
			"error", err)
		return []models.PointRecord{}
	}

	return records
}

// readForWrite loads the collection that a write is about to replace. Corrupt content is
// quarantined first so the write cannot destroy it; a failed load aborts the write.
func (s *PointStore) readForWrite(ctx context.Context) ([]models.PointRecord, error) {
	records, raw, err := s.load(ctx)
	switch {
	case err == nil:
		return records, nil
	case errors.Is(err, ErrSlotCorrupt):
		if qerr := s.slot.Quarantine(ctx, raw); qerr != nil {
			return nil, fmt.Errorf("failed to preserve corrupt points: %w", qerr)
		}
		s.metrics.StorageRecoveries.Inc()
		s.log.WarnContext(ctx, "StorageReadCorrupt: corrupt points quarantined, starting a new collection",
			"error", err)
		return []models.PointRecord{}, nil
	default:
		return nil, err
	}
}

// load returns the stored records together with the raw slot content.
func (s *PointStore) load(ctx context.Context) ([]models.PointRecord, []byte, error) {
	records := []models.PointRecord{}

	data, err := s.slot.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSlotUnreadable, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		s.metrics.StoredPoints.Set(0)
		return records, data, nil
	}

	if err = json.Unmarshal(data, &records); err != nil {
		return nil, data, fmt.Errorf("%w: %w", ErrSlotCorrupt, err)
	}
	if records == nil {
		// stored literal null
		records = []models.PointRecord{}
	}

	s.metrics.StoredPoints.Set(float64(len(records)))

	return records, data, nil
}

func (s *PointStore) write(ctx context.Context, records []models.PointRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}

	if err = s.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to persist points: %w", err)
	}

	s.metrics.StoredPoints.Set(float64(len(records)))

	return nil
}
