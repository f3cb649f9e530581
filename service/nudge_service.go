package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"debt-coach/domain"
)

// NudgeService turns a payoff plan into a short encouraging message
// without ever presenting a fabricated number as fact. The pipeline has no
// failure path that returns nothing: generation errors and validation
// rejections both land on a pre-audited fallback template.
type NudgeService struct {
	generator Generator
	validator *Validator
	timeout   time.Duration
	logger    *zap.Logger
}

func NewNudgeService(generator Generator, timeout time.Duration, logger *zap.Logger) *NudgeService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NudgeService{
		generator: generator,
		validator: NewValidator(),
		timeout:   timeout,
		logger:    logger,
	}
}

// NewJob packages a nudge request for the queue.
func (s *NudgeService) NewJob(userID string, facts domain.PlanFacts) domain.NudgeJob {
	return domain.NudgeJob{
		ID:         uuid.NewString(),
		UserID:     userID,
		Plan:       facts,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Generate runs the full pipeline for one job: prompt construction,
// candidate generation, numeric-safety validation, fallback selection.
// It never returns an error; the worst case is a generic fallback nudge.
func (s *NudgeService) Generate(ctx context.Context, job domain.NudgeJob) domain.Nudge {
	nudge := domain.Nudge{
		ID:        job.ID,
		UserID:    job.UserID,
		Status:    domain.NudgeStatusRequested,
		CreatedAt: time.Now().UTC(),
	}
	if nudge.ID == "" {
		nudge.ID = uuid.NewString()
	}

	nudge.Status = domain.NudgeStatusGenerating
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(genCtx, buildPrompt(job.Plan))
	if err != nil {
		s.logger.Warn("nudge generation failed, using fallback",
			zap.String("job_id", job.ID),
			zap.String("generator", s.generator.Name()),
			zap.Error(err))
		return s.fallback(nudge, job, domain.FailureGeneration)
	}

	candidate, err := parseCandidate(raw)
	if err != nil {
		s.logger.Warn("malformed generator response, using fallback",
			zap.String("job_id", job.ID), zap.Error(err))
		return s.fallback(nudge, job, domain.FailureGeneration)
	}

	nudge.Status = domain.NudgeStatusValidating
	if err := s.validator.Validate(candidate, job.Plan); err != nil {
		s.logger.Info("nudge candidate rejected, using fallback",
			zap.String("job_id", job.ID), zap.Error(err))
		return s.fallback(nudge, job, domain.FailureValidation)
	}

	nudge.Title = candidate.Title
	nudge.Message = candidate.Message
	nudge.Source = domain.NudgeSourceLLM
	nudge.Status = domain.NudgeStatusAccepted
	return nudge
}

func (s *NudgeService) fallback(nudge domain.Nudge, job domain.NudgeJob, reason string) domain.Nudge {
	candidate := selectFallback(job.UserID, job.Plan, reason)
	nudge.Title = candidate.Title
	nudge.Message = candidate.Message
	nudge.Source = domain.NudgeSourceFallback
	if !job.Plan.Strategy.Valid() && job.Plan.TotalMonths == 0 {
		// No usable plan context at all: the generic error template.
		nudge.Title = errorFallback.Title
		nudge.Message = errorFallback.Message
		nudge.Source = domain.NudgeSourceErrorFallback
	}
	nudge.Status = domain.NudgeStatusFallback
	nudge.FailureReason = reason
	return nudge
}

// buildPrompt confines the generation request to qualitative plan facts.
// Precise currency figures are deliberately left out of the prompt to
// shrink the hallucination surface; the validator is the backstop.
func buildPrompt(facts domain.PlanFacts) string {
	strategyDesc := "a structured payoff plan"
	switch facts.Strategy {
	case domain.StrategySnowball:
		strategyDesc = "the snowball method, paying off the smallest balances first for quick wins"
	case domain.StrategyAvalanche:
		strategyDesc = "the avalanche method, paying off the highest interest rates first to minimize cost"
	}

	milestoneDesc := map[string]string{
		"early":  "they are early in their payoff journey",
		"middle": "they are partway through their payoff journey",
		"late":   "they are close to finishing their payoff journey",
	}[facts.Milestone()]

	return fmt.Sprintf(`Write a short motivational nudge for someone paying off consumer debt.

They are using %s, and %s.

Reply with a short title on the first line, then a blank line, then an
encouraging message of two or three sentences. Do not include any dollar
amounts, percentages or timelines.`, strategyDesc, milestoneDesc)
}

// parseCandidate splits raw generator output into title and message: the
// first line is the title, the remainder the message. A single-block reply
// becomes the message under a neutral title.
func parseCandidate(raw string) (domain.NudgeCandidate, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return domain.NudgeCandidate{}, fmt.Errorf("empty generator response")
	}

	title := "Your payoff progress"
	message := text
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		first := strings.TrimSpace(text[:idx])
		rest := strings.TrimSpace(text[idx+1:])
		if first != "" && rest != "" {
			title = strings.Trim(first, "#* ")
			message = rest
		}
	}
	return domain.NudgeCandidate{Title: title, Message: message}, nil
}
