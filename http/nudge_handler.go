package http

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"debt-coach/domain"
	"debt-coach/repository"
	"debt-coach/service"
	"debt-coach/worker"
)

type NudgeHandler struct {
	service *service.NudgeService
	queue   repository.JobQueue
	nudges  repository.NudgeRepository
	tracker *worker.Tracker
	logger  *zap.Logger
}

func NewNudgeHandler(
	svc *service.NudgeService,
	queue repository.JobQueue,
	nudges repository.NudgeRepository,
	tracker *worker.Tracker,
	logger *zap.Logger,
) *NudgeHandler {
	return &NudgeHandler{service: svc, queue: queue, nudges: nudges, tracker: tracker, logger: logger}
}

type NudgeGenerateRequest struct {
	UserID string           `json:"user_id"`
	Plan   domain.PlanFacts `json:"plan"`
}

type nudgeEnqueuedResponse struct {
	NudgeID string `json:"nudge_id"`
	Status  string `json:"status"`
}

// GenerateNudge serves POST /nudge/generate. By default the job is queued
// and a 202 returned for polling; ?sync=true runs the pipeline inline.
func (h *NudgeHandler) GenerateNudge(w http.ResponseWriter, r *http.Request) {
	var req NudgeGenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeServiceError(w, h.logger, domain.NewInvalidInput("user_id", "must not be empty"))
		return
	}

	job := h.service.NewJob(req.UserID, req.Plan)

	if r.URL.Query().Get("sync") == "true" {
		nudge := h.service.Generate(r.Context(), job)
		nudge.Status = domain.NudgeStatusDelivered
		nudge.DeliveredAt = time.Now().UTC()
		if err := h.nudges.Save(r.Context(), nudge); err != nil {
			h.logger.Warn("failed to persist sync nudge", zap.Error(err))
		}
		writeJSON(w, h.logger, http.StatusOK, nudge)
		return
	}

	// Persist a stub so the client can poll before the worker finishes.
	stub := domain.Nudge{
		ID:        job.ID,
		UserID:    job.UserID,
		Status:    domain.NudgeStatusRequested,
		CreatedAt: job.EnqueuedAt,
	}
	if err := h.nudges.Save(r.Context(), stub); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if h.tracker != nil {
		h.tracker.Note(req.UserID, job.ID)
	}
	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusAccepted, nudgeEnqueuedResponse{
		NudgeID: job.ID,
		Status:  string(domain.NudgeStatusRequested),
	})
}

// GetNudge serves GET /nudge/{id} for result polling.
func (h *NudgeHandler) GetNudge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	nudge, err := h.nudges.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "nudge not found")
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, nudge)
}
