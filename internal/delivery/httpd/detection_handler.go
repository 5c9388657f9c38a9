package httpd

import (
	"net/http"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
	"github.com/mohammed-arif-23/it-panel-detection-service/pkg/utils"
)

func (h *Handler) RunDetection(w http.ResponseWriter, r *http.Request) {
	var req models.DetectionRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, err := h.detectionService.RunDetection(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.DetectionResponse{
		Success:          true,
		Results:          report.Results,
		TotalSubmissions: report.TotalSubmissions,
		TotalGroups:      report.TotalGroups,
	})
}

func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter: "+err.Error())
		return
	}

	stats, err := h.backfillService.Statistics(r.Context(), scope)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.StatisticsResponse{
		Success:    true,
		Statistics: stats,
	})
}
