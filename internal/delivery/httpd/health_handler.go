package httpd

import (
	"net/http"
	"time"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	dbUp := true
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			dbUp = false
			h.logger.Warn().Err(err).Msg("Health check: database unreachable")
		}
	}

	brokerUp := h.broker != nil && h.broker.IsConnected()

	status := "healthy"
	code := http.StatusOK
	if !dbUp {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else if !brokerUp {
		// Events are best-effort; a down broker degrades, not kills.
		status = "degraded"
	}

	writeJSON(w, code, models.HealthCheckResponse{
		Status:    status,
		Database:  dbUp,
		RabbitMQ:  brokerUp,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now(),
	})
}
