package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// PointsService backs the presentation layer: listing, operator edits and clearing.
type PointsService struct {
	log  *slog.Logger
	repo PointRepository
}

// NewPointsService creates a PointsService.
func NewPointsService(log *slog.Logger, repo PointRepository) *PointsService {
	return &PointsService{log: log, repo: repo}
}

// List returns all stored points.
func (ps *PointsService) List(ctx context.Context) []models.PointRecord {
	return ps.repo.List(ctx)
}

// Edit merges edit onto the stored record with the given id and writes the full record back
// in a single read-modify-write.
func (ps *PointsService) Edit(ctx context.Context, id string, edit models.PointEdit) (*models.PointRecord, error) {
	updated, ok, err := ps.repo.Modify(ctx, id, func(current models.PointRecord) models.PointRecord {
		return current.WithEdit(edit)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save edited point: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPointNotFound, id)
	}

	ps.log.InfoContext(ctx, "Point edited", "id", id, "priority", string(updated.Priority))

	return &updated, nil
}

// Clear removes every stored point.
func (ps *PointsService) Clear(ctx context.Context) error {
	if err := ps.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear points: %w", err)
	}

	return nil
}
