package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// handleAppUninstalled removes all campaign data of an offboarded shop.
// Webhook signature verification happens at the ingress; the payload
// carries the shop domain.
func (h *Handler) handleAppUninstalled(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Shop string `json:"shop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Shop == "" {
		h.writeError(w, http.StatusBadRequest, "missing shop")
		return
	}

	if err := h.svc.RemoveShop(r.Context(), payload.Shop); err != nil {
		h.logger.Error("app uninstalled cleanup error", slog.Any("error", err), slog.String("shop", payload.Shop))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusOK)
}
