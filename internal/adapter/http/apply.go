package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// adjustmentConfig is the wire shape of an adjustment, shared by the
// preview and apply endpoints. AdjustmentType combines kind and direction
// (e.g. PERCENT_INCREASE, FIXED_DECREASE).
type adjustmentConfig struct {
	AdjustmentType    string     `json:"adjustmentType"`
	Value             float64    `json:"value"`
	Rounding          string     `json:"rounding"`
	ScheduledAt       *time.Time `json:"scheduledAt,omitempty"`
	RevertAt          *time.Time `json:"revertAt,omitempty"`
	SetCompareAtPrice bool       `json:"setCompareAtPrice"`
}

func (c adjustmentConfig) toAdjustment() (domain.Adjustment, error) {
	adj := domain.Adjustment{Value: c.Value, Rounding: domain.Rounding(c.Rounding)}
	if adj.Rounding == "" {
		adj.Rounding = domain.RoundingNone
	}

	switch {
	case strings.HasPrefix(c.AdjustmentType, "PERCENT_"):
		adj.Type = domain.AdjustmentPercentage
	case strings.HasPrefix(c.AdjustmentType, "FIXED_"):
		adj.Type = domain.AdjustmentFixedAmount
	default:
		return adj, errors.New("unknown adjustment type: " + c.AdjustmentType)
	}
	switch {
	case strings.HasSuffix(c.AdjustmentType, "_INCREASE"):
		adj.Strategy = domain.StrategyIncrease
	case strings.HasSuffix(c.AdjustmentType, "_DECREASE"):
		adj.Strategy = domain.StrategyDecrease
	default:
		return adj, errors.New("unknown adjustment type: " + c.AdjustmentType)
	}
	return adj, nil
}

// adjustmentRequest is the shared body of preview and apply calls. The
// legacy collectionId field is accepted as a fallback for older clients.
type adjustmentRequest struct {
	FilterType   string            `json:"filterType"`
	FilterValue  string            `json:"filterValue"`
	CollectionID string            `json:"collectionId"`
	Title        string            `json:"title"`
	Config       *adjustmentConfig `json:"config"`
}

func (req adjustmentRequest) targetFilter() domain.TargetFilter {
	ft := domain.FilterType(req.FilterType)
	if ft == "" {
		if req.CollectionID == "all" {
			ft = domain.FilterAll
		} else {
			ft = domain.FilterCollection
		}
	}
	value := req.FilterValue
	if value == "" {
		value = req.CollectionID
	}
	f := domain.TargetFilter{Type: ft, Value: value}
	if ft == domain.FilterCollection {
		f.CollectionID = value
	}
	return f
}

// handleApply creates a campaign from the request body and either executes
// it immediately or leaves it scheduled. Billing rejections produce
// HTTP 402, validation problems HTTP 400, everything else HTTP 500.
func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.svc.Apply(r.Context(), port.ApplyRequest{
		Shop:        shop,
		Title:       req.Title,
		Filter:      req.targetFilter(),
		Adjustment:  adj,
		CompareAt:   req.Config.SetCompareAtPrice,
		ScheduledAt: req.Config.ScheduledAt,
		RevertAt:    req.Config.RevertAt,
	})
	switch {
	case errors.Is(err, port.ErrNoSubscription):
		h.writeError(w, http.StatusPaymentRequired, err.Error())
		return
	case errors.Is(err, port.ErrInvalidAdjustment):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("apply error", slog.Any("error", err), slog.String("shop", shop))
		h.writeError(w, http.StatusInternalServerError, "apply failed")
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}
