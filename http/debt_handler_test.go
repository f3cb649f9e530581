package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debt-coach/domain"
)

func debtRequest() map[string]any {
	return map[string]any{
		"user_id":         "user-1",
		"name":            "visa",
		"balance":         "3200.50",
		"annual_rate":     "21.99",
		"minimum_payment": "95",
		"type":            "credit_card",
	}
}

func TestDebtCRUDOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	created := env.do(t, http.MethodPost, "/debts", debtRequest())
	require.Equal(t, http.StatusCreated, created.Code)

	var debt domain.Debt
	decodeBody(t, created, &debt)
	require.NotEmpty(t, debt.ID)
	assert.Equal(t, "visa", debt.Name)
	assert.Equal(t, "user-1", debt.UserID)
	assert.Equal(t, "3200.5", debt.Balance.String())

	got := env.do(t, http.MethodGet, "/debts/"+debt.ID, nil)
	require.Equal(t, http.StatusOK, got.Code)

	update := debtRequest()
	update["balance"] = "2800"
	updated := env.do(t, http.MethodPut, "/debts/"+debt.ID, update)
	require.Equal(t, http.StatusOK, updated.Code)

	var after domain.Debt
	decodeBody(t, updated, &after)
	assert.Equal(t, "2800", after.Balance.String())

	list := env.do(t, http.MethodGet, "/debts?user_id=user-1", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var debts []domain.Debt
	decodeBody(t, list, &debts)
	assert.Len(t, debts, 1)

	deleted := env.do(t, http.MethodDelete, "/debts/"+debt.ID, nil)
	assert.Equal(t, http.StatusNoContent, deleted.Code)

	missing := env.do(t, http.MethodGet, "/debts/"+debt.ID, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestCreateDebtValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name  string
		patch func(map[string]any)
		field string
	}{
		{"missing user", func(m map[string]any) { delete(m, "user_id") }, "user_id"},
		{"missing name", func(m map[string]any) { delete(m, "name") }, "name"},
		{"negative balance", func(m map[string]any) { m["balance"] = "-10" }, "balance"},
		{"rate over limit", func(m map[string]any) { m["annual_rate"] = "150" }, "annual_rate"},
		{"zero minimum", func(m map[string]any) { m["minimum_payment"] = "0" }, "minimum_payment"},
		{"bad due day", func(m map[string]any) { m["due_day"] = 40 }, "due_day"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := debtRequest()
			tc.patch(req)

			rec := env.do(t, http.MethodPost, "/debts", req)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var errResp struct {
				Field string `json:"field"`
			}
			decodeBody(t, rec, &errResp)
			assert.Equal(t, tc.field, errResp.Field)
		})
	}
}

func TestListDebtsRequiresUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/debts", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDebtsEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/debts?user_id=nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestUpdateDebtNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/debts/missing", debtRequest())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDebtNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/debts/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
