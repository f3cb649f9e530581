package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"debt-coach/domain"
)

func newNudgeService(gen Generator) *NudgeService {
	return NewNudgeService(gen, time.Second, zap.NewNop())
}

func TestGenerateAcceptsSafeCandidate(t *testing.T) {
	gen := &MockGenerator{Responses: []string{
		"Keep it up\n\nYou're making great progress on your debt journey! Stay focused and keep the momentum going.",
	}}
	svc := newNudgeService(gen)

	job := svc.NewJob("user-1", planFacts())
	nudge := svc.Generate(context.Background(), job)

	assert.Equal(t, domain.NudgeStatusAccepted, nudge.Status)
	assert.Equal(t, domain.NudgeSourceLLM, nudge.Source)
	assert.Equal(t, "Keep it up", nudge.Title)
	assert.Empty(t, nudge.FailureReason)
	assert.Equal(t, job.ID, nudge.ID)
	assert.Equal(t, "user-1", nudge.UserID)
}

func TestGenerateFallsBackOnPoisonedCandidate(t *testing.T) {
	gen := &MockGenerator{Responses: []string{
		"Big numbers\n\nYou owe $50000 and should pay $2000 monthly to be debt-free in 25 months!",
	}}
	svc := newNudgeService(gen)

	nudge := svc.Generate(context.Background(), svc.NewJob("user-1", planFacts()))

	assert.Equal(t, domain.NudgeStatusFallback, nudge.Status)
	assert.Equal(t, domain.NudgeSourceFallback, nudge.Source)
	assert.Equal(t, domain.FailureValidation, nudge.FailureReason)
	assert.NotEmpty(t, nudge.Message)
	assert.Empty(t, NewValidator().ScanNumericTokens(nudge.Message))
}

func TestGenerateFallsBackOnGeneratorError(t *testing.T) {
	gen := &MockGenerator{Err: errors.New("provider unavailable")}
	svc := newNudgeService(gen)

	nudge := svc.Generate(context.Background(), svc.NewJob("user-1", planFacts()))

	assert.Equal(t, domain.NudgeStatusFallback, nudge.Status)
	assert.Equal(t, domain.NudgeSourceFallback, nudge.Source)
	assert.Equal(t, domain.FailureGeneration, nudge.FailureReason)
	assert.NotEmpty(t, nudge.Message)
}

func TestGenerateFallsBackOnTimeout(t *testing.T) {
	gen := &MockGenerator{
		Delay:     200 * time.Millisecond,
		Responses: []string{"Too slow\n\nThis response should never arrive in time to be used."},
	}
	svc := NewNudgeService(gen, 20*time.Millisecond, zap.NewNop())

	nudge := svc.Generate(context.Background(), svc.NewJob("user-1", planFacts()))

	assert.Equal(t, domain.NudgeStatusFallback, nudge.Status)
	assert.Equal(t, domain.FailureGeneration, nudge.FailureReason)
}

func TestGenerateFallsBackOnEmptyResponse(t *testing.T) {
	gen := &MockGenerator{Responses: []string{"   "}}
	svc := newNudgeService(gen)

	nudge := svc.Generate(context.Background(), svc.NewJob("user-1", planFacts()))

	assert.Equal(t, domain.NudgeStatusFallback, nudge.Status)
	assert.Equal(t, domain.FailureGeneration, nudge.FailureReason)
}

func TestGenerateErrorFallbackWithoutPlanContext(t *testing.T) {
	gen := &MockGenerator{Err: errors.New("provider unavailable")}
	svc := newNudgeService(gen)

	nudge := svc.Generate(context.Background(), svc.NewJob("user-1", domain.PlanFacts{}))

	assert.Equal(t, domain.NudgeStatusFallback, nudge.Status)
	assert.Equal(t, domain.NudgeSourceErrorFallback, nudge.Source)
	assert.Equal(t, "Keep going", nudge.Title)
}

func TestGenerateIsDeterministicPerJob(t *testing.T) {
	svc := newNudgeService(&MockGenerator{Err: errors.New("down")})

	job := svc.NewJob("user-1", planFacts())
	first := svc.Generate(context.Background(), job)
	second := svc.Generate(context.Background(), job)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Message, second.Message)
	assert.Equal(t, first.ID, second.ID)
}

func TestGenerateAssignsIDWhenJobHasNone(t *testing.T) {
	svc := newNudgeService(NewMockGenerator())

	nudge := svc.Generate(context.Background(), domain.NudgeJob{UserID: "user-1", Plan: planFacts()})
	assert.NotEmpty(t, nudge.ID)
}

func TestMockGeneratorCyclesThroughPoisonedResponses(t *testing.T) {
	svc := newNudgeService(NewMockGenerator())
	facts := planFacts()

	var sources []domain.NudgeSource
	for i := 0; i < 5; i++ {
		nudge := svc.Generate(context.Background(), svc.NewJob("user-1", facts))
		sources = append(sources, nudge.Source)
	}

	// The canned set ends with two hallucinated-figure responses, so the
	// last two runs must land on fallback.
	assert.Equal(t, domain.NudgeSourceLLM, sources[0])
	assert.Equal(t, domain.NudgeSourceFallback, sources[3])
	assert.Equal(t, domain.NudgeSourceFallback, sources[4])
}

func TestParseCandidate(t *testing.T) {
	c, err := parseCandidate("A title\n\nAnd a body that follows it.")
	require.NoError(t, err)
	assert.Equal(t, "A title", c.Title)
	assert.Equal(t, "And a body that follows it.", c.Message)

	c, err = parseCandidate("Just one block of text without a separate title.")
	require.NoError(t, err)
	assert.Equal(t, "Your payoff progress", c.Title)
	assert.Equal(t, "Just one block of text without a separate title.", c.Message)

	c, err = parseCandidate("## Markdown title\nBody after heading markers.")
	require.NoError(t, err)
	assert.Equal(t, "Markdown title", c.Title)

	_, err = parseCandidate("")
	assert.Error(t, err)
}

func TestBuildPromptContainsNoFigures(t *testing.T) {
	prompt := buildPrompt(planFacts())

	assert.Contains(t, prompt, "snowball")
	assert.Empty(t, NewValidator().ScanNumericTokens(prompt))
}
