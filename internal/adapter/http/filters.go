package httpadapter

import (
	"log/slog"
	"net/http"
)

// handleFilterOptions lists collections, vendors and product types the
// operator can target.
func (h *Handler) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	shop := shopFrom(r)
	if shop == "" {
		h.writeError(w, http.StatusBadRequest, "missing shop")
		return
	}

	options, err := h.svc.FilterOptions(r.Context(), shop)
	if err != nil {
		h.logger.Error("filter options error", slog.Any("error", err), slog.String("shop", shop))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, options)
}
