package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"pricewave/internal/core/port"
)

// handleRevert undoes a completed campaign. Precondition failures map to
// HTTP 400 with the specific reason; unknown campaigns to HTTP 404.
func (h *Handler) handleRevert(w http.ResponseWriter, r *http.Request) {
	shop := shopFrom(r)
	if shop == "" {
		h.writeError(w, http.StatusBadRequest, "missing shop")
		return
	}

	var req struct {
		CampaignID int64 `json:"campaignId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CampaignID == 0 {
		h.writeError(w, http.StatusBadRequest, "missing campaignId")
		return
	}

	res, err := h.svc.Revert(r.Context(), shop, req.CampaignID)
	switch {
	case errors.Is(err, port.ErrCampaignNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, port.ErrNotCompleted),
		errors.Is(err, port.ErrAlreadyReverted),
		errors.Is(err, port.ErrNoLogs),
		errors.Is(err, port.ErrNotRevertible):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("revert error", slog.Any("error", err), slog.String("shop", shop))
		h.writeError(w, http.StatusInternalServerError, "revert failed")
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
