package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// handlePreview computes price changes for the requested filter without
// modifying anything. Parsing errors produce HTTP 400; catalog failures
// HTTP 500.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	shop := shopFrom(r)
	if shop == "" {
		h.writeError(w, http.StatusBadRequest, "missing shop")
		return
	}

	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Config == nil {
		h.writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	adj, err := req.Config.toAdjustment()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.svc.Preview(r.Context(), shop, req.targetFilter(), adj)
	if err != nil {
		h.logger.Error("preview error", slog.Any("error", err), slog.String("shop", shop))
		h.writeError(w, http.StatusInternalServerError, "preview failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"preview": rows})
}
