package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"debt-coach/service"
)

type HealthHandler struct {
	generator service.Generator
	logger    *zap.Logger
}

func NewHealthHandler(generator service.Generator, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{generator: generator, logger: logger}
}

type healthResponse struct {
	Status    string `json:"status"`
	Generator string `json:"generator"`
	Timestamp string `json:"timestamp"`
}

// Health serves GET /healthz.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, healthResponse{
		Status:    "ok",
		Generator: h.generator.Name(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
