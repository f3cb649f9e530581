package http

import (
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"debt-coach/domain"
	"debt-coach/repository"
	"debt-coach/service"
)

type PlanHandler struct {
	payoff *service.PayoffService
	events repository.EventRepository
	logger *zap.Logger
}

func NewPlanHandler(payoff *service.PayoffService, events repository.EventRepository, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{payoff: payoff, events: events, logger: logger}
}

type PlanRequest struct {
	UserID       string          `json:"user_id,omitempty"`
	Debts        []DebtPayload   `json:"debts"`
	Strategy     domain.Strategy `json:"strategy"`
	ExtraPayment decimal.Decimal `json:"extra_payment"`
}

// CalculatePlan serves POST /plan: a single-strategy schedule, or the
// side-by-side comparison when strategy is "compare".
func (h *PlanHandler) CalculatePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Strategy.Valid() {
		writeServiceError(w, h.logger, domain.NewInvalidInputf("strategy",
			"must be %q, %q or %q", domain.StrategySnowball, domain.StrategyAvalanche, domain.StrategyCompare))
		return
	}

	debts := debtsToDomain(req.Debts)

	var result any
	if req.Strategy == domain.StrategyCompare {
		comparison, err := h.payoff.Compare(r.Context(), debts, req.ExtraPayment)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		result = comparison
	} else {
		schedule, err := h.payoff.Compute(debts, req.Strategy, req.ExtraPayment)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		result = schedule
	}

	if h.events != nil && req.UserID != "" {
		if err := h.events.Record(r.Context(), domain.Event{
			UserID:  req.UserID,
			Kind:    domain.EventPlanComputed,
			Payload: string(req.Strategy),
		}); err != nil {
			h.logger.Warn("failed to record plan event", zap.Error(err))
		}
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
