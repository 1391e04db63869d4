package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/metrics"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"golang.org/x/time/rate"
)

// Resolver outcomes other than success.
var (
	// ErrEmptyAddress is returned for a blank address; nothing is sent to the provider.
	ErrEmptyAddress = errors.New("address is empty")
	// ErrUnresolved means the provider answered with zero matches.
	ErrUnresolved = errors.New("address could not be resolved")
	// ErrUnavailable wraps transport and provider failures. Re-submitting may succeed.
	ErrUnavailable = errors.New("geocoding provider unavailable")
)

// Resolver turns an address into at most one GeoResult. It appends the country
// qualifier, paces requests with a rate limiter and keeps only the top-ranked match.
// It never retries on its own.
type Resolver struct {
	provider     Provider         // Provider doing the actual lookup
	providerName string           // Name of the provider for metrics labeling
	qualifier    string           // Country qualifier appended to every query
	limiter      *rate.Limiter    // Minimum spacing between provider requests
	metrics      *metrics.Metrics // Metrics for tracking provider performance
	log          *slog.Logger
}

// NewResolver creates a Resolver. A minInterval of zero disables pacing.
func NewResolver(
	provider Provider,
	providerName string,
	qualifier string,
	minInterval time.Duration,
	metrics *metrics.Metrics,
	log *slog.Logger,
) *Resolver {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}

	return &Resolver{
		provider:     provider,
		providerName: providerName,
		qualifier:    strings.TrimSpace(qualifier),
		limiter:      limiter,
		metrics:      metrics,
		log:          log,
	}
}

// Query returns the string actually sent to the provider for address.
func (r *Resolver) Query(address string) string {
	address = strings.TrimSpace(address)
	if r.qualifier == "" || strings.HasSuffix(strings.ToLower(address), strings.ToLower(r.qualifier)) {
		return address
	}

	return address + ", " + r.qualifier
}

// Resolve geocodes address and returns the top-ranked match.
//
// Errors:
// - ErrEmptyAddress: address is blank.
// - ErrUnresolved: the provider found nothing.
// - ErrUnavailable (wrapping the cause): transport failure, provider error, cancelled
// context or a top match with coordinates outside WGS84.
func (r *Resolver) Resolve(ctx context.Context, address string) (*models.GeoResult, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrEmptyAddress
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limiter: %w", ErrUnavailable, err)
	}

	query := r.Query(address)
	startTime := time.Now()
	results, err := r.provider.Geocode(ctx, query)
	duration := time.Since(startTime).Seconds()
	r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(duration)

	if err != nil {
		r.metrics.APIErrors.Inc()
		r.log.ErrorContext(ctx, "Failed to geocode", "provider", r.providerName, "query", query, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if len(results) == 0 {
		r.log.WarnContext(ctx, "Geocoding returned no matches", "provider", r.providerName, "query", query)
		return nil, ErrUnresolved
	}

	top := results[0]
	if !top.Valid() {
		r.metrics.APIErrors.Inc()
		return nil, fmt.Errorf("%w: top match has invalid coordinates (%v, %v)",
			ErrUnavailable, top.Latitude, top.Longitude)
	}

	r.log.DebugContext(ctx, "Address resolved",
		"query", query,
		"lat", top.Latitude,
		"lon", top.Longitude,
		"display_name", top.DisplayName,
		"candidates", len(results))

	return &top, nil
}
