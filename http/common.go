// Package http is the transport layer: schema-validated request structs
// per endpoint, thin handlers over the services, shared middleware.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"debt-coach/domain"
)

var decimalHundred = decimal.NewFromInt(100)

// DebtPayload is the wire form of a debt in plan and slip requests.
// Amounts accept JSON numbers or strings and are parsed as decimals.
type DebtPayload struct {
	Name           string          `json:"name"`
	Balance        decimal.Decimal `json:"balance"`
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	MinimumPayment decimal.Decimal `json:"minimum_payment"`
	DueDay         int             `json:"due_day,omitempty"`
	Type           string          `json:"type,omitempty"`
	Status         string          `json:"status,omitempty"`
}

func (p DebtPayload) toDomain() domain.Debt {
	return domain.Debt{
		Name:           p.Name,
		Balance:        p.Balance,
		AnnualRate:     p.AnnualRate,
		MinimumPayment: p.MinimumPayment,
		DueDay:         p.DueDay,
		Type:           p.Type,
		Status:         domain.DebtStatus(p.Status),
	}
}

func debtsToDomain(payloads []DebtPayload) []domain.Debt {
	debts := make([]domain.Debt, 0, len(payloads))
	for _, p := range payloads {
		debts = append(debts, p.toDomain())
	}
	return debts
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// writeServiceError maps service failures to HTTP statuses: only
// InvalidInputError is a client error, everything else is a 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var invalid *domain.InvalidInputError
	if errors.As(err, &invalid) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: invalid.Error(), Field: invalid.Field})
		return
	}
	logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeJSON encodes into a buffer first so a marshaling failure never
// leaves a half-written 200 response.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
