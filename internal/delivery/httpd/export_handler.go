package httpd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

// ExportReport runs a fresh detection over the requested scope and streams
// the result as a CSV attachment, one row per suspicious group.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter: "+err.Error())
		return
	}

	req := models.DetectionRequest{
		AssignmentID:  scope.AssignmentID,
		ClassYear:     scope.ClassYear,
		DateFrom:      scope.DateFrom,
		DateTo:        scope.DateTo,
		Method:        models.DetectionMethod(r.URL.Query().Get("method")),
		MinConfidence: getIntQueryParam(r, "min_confidence", 0),
	}

	report, err := h.detectionService.RunDetection(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	fileName := fmt.Sprintf("assignment_detection_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := h.exportService.WriteCSV(w, report); err != nil {
		h.logger.Error().Err(err).Msg("Failed to stream CSV export")
	}
}
