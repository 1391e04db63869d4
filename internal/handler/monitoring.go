package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether the storage backend is usable.
type HealthCheck func(ctx context.Context) error

// RegisterMonitoring adds /healthz and /metrics. A nil check always reports healthy.
func RegisterMonitoring(r chi.Router, log *slog.Logger, reg *prometheus.Registry, check HealthCheck) {
	r.Get("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		log.DebugContext(ctx, "Performing health checks...")

		status, body := http.StatusOK, "OK"
		if check != nil {
			if err := check(ctx); err != nil {
				log.WarnContext(ctx, "Health check failed", "error", err)
				status, body = http.StatusServiceUnavailable, "storage check failed"
			}
		}

		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
