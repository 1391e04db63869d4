// Package handler exposes points and imports over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/UnknownOlympus/waypoint/internal/export"
	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/service"
)

const (
	maxDocumentBytes = 10 << 20
	requestTimeout   = 30 * time.Second
)

// Importer runs document imports.
type Importer interface {
	Import(ctx context.Context, doc models.RawDocumentText) (*models.PointRecord, error)
	ImportWithAddress(ctx context.Context, doc models.RawDocumentText, address string) (*models.PointRecord, error)
}

// Points lists, edits and clears stored points.
type Points interface {
	List(ctx context.Context) []models.PointRecord
	Edit(ctx context.Context, id string, edit models.PointEdit) (*models.PointRecord, error)
	Clear(ctx context.Context) error
}

// Handler serves the points API.
type Handler struct {
	logger   *slog.Logger
	importer Importer
	points   Points
}

// New creates a Handler.
func New(importer Importer, points Points, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, importer: importer, points: points}
}

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// CORS returns middleware that lets a browser map frontend on one of origins call the API.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	})
}

// Register registers the API routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(api chi.Router) {
		api.Use(middleware.RequestID)
		api.Use(middleware.Recoverer)
		api.Use(middleware.Timeout(requestTimeout))

		api.Get("/points", h.handleListPoints)
		api.Get("/points.geojson", h.handlePointsGeoJSON)
		api.Put("/points/{id}", h.handleEditPoint)
		api.Delete("/points", h.handleClearPoints)
		api.Post("/imports", h.handleImport)
	})
}

func (h *Handler) handleListPoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.points.List(r.Context()))
}

func (h *Handler) handlePointsGeoJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := export.MarshalGeoJSON(h.points.List(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to render geojson", "error", err.Error())
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "Internal", Message: "The points could not be rendered."})
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleEditPoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var edit models.PointEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		h.logger.WarnContext(ctx, "invalid point edit request",
			"request_id", middleware.GetReqID(ctx),
			"error", err.Error(),
		)
		writeError(w, http.StatusBadRequest, errorResponse{
			Error:   "InvalidRequest",
			Message: "The request body must be a JSON object with ticket, orderNumber, reasonText or priority " +
				"(low, medium, high).",
		})
		return
	}

	updated, err := h.points.Edit(ctx, id, edit)
	switch {
	case errors.Is(err, service.ErrPointNotFound):
		writeError(w, http.StatusNotFound, errorResponse{Error: "PointNotFound", Message: "No point with id " + id + "."})
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to edit point", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "Internal", Message: "The point could not be saved."})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleClearPoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.points.Clear(ctx); err != nil {
		h.logger.ErrorContext(ctx, "failed to clear points", "error", err.Error())
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "Internal", Message: "The points could not be cleared."})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleImport takes the extracted document text as request body. Pages may be separated by form feed.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error:   "InvalidRequest",
			Message: "The document text could not be read or is larger than 10 MiB.",
		})
		return
	}

	doc := models.NewRawDocumentText(strings.Split(string(body), "\f")...)

	var record *models.PointRecord
	if address := r.URL.Query().Get("address"); address != "" {
		record, err = h.importer.ImportWithAddress(ctx, doc, address)
	} else {
		record, err = h.importer.Import(ctx, doc)
	}
	if err != nil {
		h.writeImportError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) writeImportError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrImportInProgress) {
		writeError(w, http.StatusConflict, errorResponse{
			Error:     "ImportInProgress",
			Message:   "Another import is running. Wait for it to finish and submit again.",
			Retryable: true,
		})
		return
	}

	var importErr *service.ImportError
	if !errors.As(err, &importErr) {
		h.logger.ErrorContext(ctx, "import failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, errorResponse{Error: "Internal", Message: "The point could not be saved."})
		return
	}

	status := http.StatusUnprocessableEntity
	if importErr.Retryable() {
		status = http.StatusServiceUnavailable
	}

	writeError(w, status, errorResponse{
		Error:     string(importErr.Kind),
		Message:   importErr.Message(),
		Retryable: importErr.Retryable(),
	})
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
