package httpd

import (
	"net/http"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

func (h *Handler) BackfillHashes(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter: "+err.Error())
		return
	}

	stats, err := h.backfillService.Backfill(r.Context(), scope)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.BackfillResponse{
		Success:    true,
		Statistics: stats,
	})
}
