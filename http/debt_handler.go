package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"debt-coach/domain"
	"debt-coach/repository"
)

type DebtHandler struct {
	debts  repository.DebtRepository
	logger *zap.Logger
}

func NewDebtHandler(debts repository.DebtRepository, logger *zap.Logger) *DebtHandler {
	return &DebtHandler{debts: debts, logger: logger}
}

type DebtRequest struct {
	UserID string `json:"user_id"`
	DebtPayload
}

func (req *DebtRequest) validate() error {
	if req.UserID == "" {
		return domain.NewInvalidInput("user_id", "must not be empty")
	}
	if req.Name == "" {
		return domain.NewInvalidInput("name", "must not be empty")
	}
	if req.Balance.IsNegative() {
		return domain.NewInvalidInput("balance", "must not be negative")
	}
	if req.AnnualRate.IsNegative() || req.AnnualRate.GreaterThan(decimalHundred) {
		return domain.NewInvalidInput("annual_rate", "must be between 0 and 100")
	}
	if !req.MinimumPayment.IsPositive() {
		return domain.NewInvalidInput("minimum_payment", "must be positive")
	}
	if req.DueDay < 0 || req.DueDay > 31 {
		return domain.NewInvalidInput("due_day", "must be between 1 and 31")
	}
	return nil
}

// CreateDebt serves POST /debts.
func (h *DebtHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var req DebtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	debt := req.toDomain()
	debt.UserID = req.UserID
	created, err := h.debts.Create(r.Context(), debt)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, created)
}

// ListDebts serves GET /debts?user_id=...
func (h *DebtHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeServiceError(w, h.logger, domain.NewInvalidInput("user_id", "must not be empty"))
		return
	}
	debts, err := h.debts.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if debts == nil {
		debts = []domain.Debt{}
	}
	writeJSON(w, h.logger, http.StatusOK, debts)
}

// GetDebt serves GET /debts/{id}.
func (h *DebtHandler) GetDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := h.debts.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, debt)
}

// UpdateDebt serves PUT /debts/{id}.
func (h *DebtHandler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	var req DebtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	debt := req.toDomain()
	debt.ID = r.PathValue("id")
	debt.UserID = req.UserID
	updated, err := h.debts.Update(r.Context(), debt)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteDebt serves DELETE /debts/{id}.
func (h *DebtHandler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	err := h.debts.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
