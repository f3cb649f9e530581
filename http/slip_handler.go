package http

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"debt-coach/domain"
	"debt-coach/repository"
	"debt-coach/service"
)

type SlipHandler struct {
	slip   *service.SlipService
	events repository.EventRepository
	logger *zap.Logger
}

func NewSlipHandler(slip *service.SlipService, events repository.EventRepository, logger *zap.Logger) *SlipHandler {
	return &SlipHandler{slip: slip, events: events, logger: logger}
}

type SlipCheckRequest struct {
	UserID        string          `json:"user_id,omitempty"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	Debts         []DebtPayload   `json:"debts"`
}

// CheckSlip serves POST /slip/check.
func (h *SlipHandler) CheckSlip(w http.ResponseWriter, r *http.Request) {
	var req SlipCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.slip.Check(req.MonthlyBudget, debtsToDomain(req.Debts))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if h.events != nil && req.UserID != "" && result.IsSlip {
		if err := h.events.Record(r.Context(), domain.Event{
			UserID:  req.UserID,
			Kind:    domain.EventSlipDetected,
			Payload: result.Shortfall.StringFixed(2),
		}); err != nil {
			h.logger.Warn("failed to record slip event", zap.Error(err))
		}
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
