package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/service"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type BrokerStatus interface {
	IsConnected() bool
}

type Handler struct {
	detectionService service.DetectionService
	backfillService  service.BackfillService
	exportService    service.ExportService
	db               Pinger
	broker           BrokerStatus
	logger           zerolog.Logger
	startTime        time.Time
}

func NewHandler(
	detectionService service.DetectionService,
	backfillService service.BackfillService,
	exportService service.ExportService,
	db Pinger,
	broker BrokerStatus,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		detectionService: detectionService,
		backfillService:  backfillService,
		exportService:    exportService,
		db:               db,
		broker:           broker,
		logger:           logger,
		startTime:        time.Now(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1/detection", func(r chi.Router) {
		r.Post("/", h.RunDetection)
		r.Get("/statistics", h.GetStatistics)
		r.Post("/backfill", h.BackfillHashes)
		r.Get("/export", h.ExportReport)
	})
}

// scopeFromQuery builds a filter from query parameters; every filter is
// optional.
func scopeFromQuery(r *http.Request) (models.Scope, error) {
	scope := models.Scope{
		AssignmentID: r.URL.Query().Get("assignment_id"),
		ClassYear:    r.URL.Query().Get("class_year"),
	}

	if raw := r.URL.Query().Get("date_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Scope{}, err
		}
		scope.DateFrom = &t
	}
	if raw := r.URL.Query().Get("date_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.Scope{}, err
		}
		scope.DateTo = &t
	}

	return scope, nil
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

// writeServiceError maps the service error taxonomy to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidScope):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRepositoryUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
