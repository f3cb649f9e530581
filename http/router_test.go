package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"debt-coach/repository"
	"debt-coach/service"
	"debt-coach/worker"
)

// testEnv wires the full handler set over in-memory dependencies, routed
// the same way the server binary routes them.
type testEnv struct {
	mux       *http.ServeMux
	store     *repository.MemoryStore
	queue     *repository.MemoryQueue
	tracker   *worker.Tracker
	generator *service.MockGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	store := repository.NewMemoryStore()
	queue := repository.NewMemoryQueue(8)
	tracker := worker.NewTracker()
	generator := service.NewMockGenerator()

	payoff := service.NewPayoffService(repository.NewMockCache(), logger)
	slip := service.NewSlipService(logger)
	nudge := service.NewNudgeService(generator, time.Second, logger)

	planHandler := NewPlanHandler(payoff, store.Events(), logger)
	slipHandler := NewSlipHandler(slip, store.Events(), logger)
	nudgeHandler := NewNudgeHandler(nudge, queue, store.Nudges(), tracker, logger)
	debtHandler := NewDebtHandler(store, logger)
	healthHandler := NewHealthHandler(generator, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /plan", planHandler.CalculatePlan)
	mux.HandleFunc("POST /slip/check", slipHandler.CheckSlip)
	mux.HandleFunc("POST /nudge/generate", nudgeHandler.GenerateNudge)
	mux.HandleFunc("GET /nudge/{id}", nudgeHandler.GetNudge)
	mux.HandleFunc("POST /debts", debtHandler.CreateDebt)
	mux.HandleFunc("GET /debts", debtHandler.ListDebts)
	mux.HandleFunc("GET /debts/{id}", debtHandler.GetDebt)
	mux.HandleFunc("PUT /debts/{id}", debtHandler.UpdateDebt)
	mux.HandleFunc("DELETE /debts/{id}", debtHandler.DeleteDebt)
	mux.HandleFunc("GET /healthz", healthHandler.Health)

	return &testEnv{
		mux:       mux,
		store:     store,
		queue:     queue,
		tracker:   tracker,
		generator: generator,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
