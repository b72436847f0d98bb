package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// handleListCampaigns returns the shop's campaigns, optionally narrowed by
// a `status` query parameter.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	shop := shopFrom(r)
	if shop == "" {
		h.writeError(w, http.StatusBadRequest, "missing shop")
		return
	}

	var status *domain.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.Status(s)
		status = &st
	}

	campaigns, err := h.svc.ListCampaigns(r.Context(), shop, status)
	if err != nil {
		h.logger.Error("list campaigns error", slog.Any("error", err), slog.String("shop", shop))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

// handleGetCampaign returns one campaign with its change log.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	shop := shopFrom(r)
	if shop == "" {
		h.writeError(w, http.StatusBadRequest, "missing shop")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	c, logs, err := h.svc.GetCampaign(r.Context(), shop, id)
	switch {
	case errors.Is(err, port.ErrCampaignNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.logger.Error("get campaign error", slog.Any("error", err), slog.String("shop", shop))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"campaign": c, "logs": logs})
}

// handleCancelCampaign cancels a scheduled campaign and its paired
// auto-revert.
func (h *Handler) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	shop := shopFrom(r)
	if shop == "" {
		h.writeError(w, http.StatusBadRequest, "missing shop")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	err = h.svc.CancelCampaign(r.Context(), shop, id)
	switch {
	case errors.Is(err, port.ErrCampaignNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, port.ErrNotCancelable):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("cancel campaign error", slog.Any("error", err), slog.String("shop", shop))
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"canceled": true})
}
