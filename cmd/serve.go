package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/UnknownOlympus/waypoint/internal/handler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the points API with health and metrics endpoints",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	importer, err := a.newImporter(ctx)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(handler.CORS(cfg.Server.AllowedOrigins))
	handler.New(importer, a.points, logger).Register(router)
	handler.RegisterMonitoring(router, logger, a.registry, a.health)

	return runServer(ctx, router, cfg.Server.Port)
}

// runServer listens on port until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, h http.Handler, port int) error {
	const (
		readTimeout     = 5 * time.Second
		writeTimeout    = 60 * time.Second // imports wait for the geocoder
		shutdownTimeout = 10 * time.Second
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      h,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(ctx, "Starting server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Server failed", "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "Shutdown signal received. Stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Server stopped gracefully.")

	return nil
}
