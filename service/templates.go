package service

import (
	"hash/fnv"

	"debt-coach/domain"
)

// Fallback nudges are a closed, pre-audited set containing zero numeric
// tokens. TestFallbackTemplatesAreNumberFree and the `templates verify`
// command enforce that invariant; do not add a template with digits.

var strategyTemplates = map[domain.Strategy][]domain.NudgeCandidate{
	domain.StrategySnowball: {
		{Title: "Quick wins ahead", Message: "Focus on your smallest debt first - those quick wins will fuel your motivation!"},
		{Title: "Keep the snowball rolling", Message: "The snowball method builds momentum. Each paid-off debt makes the next one easier."},
		{Title: "Momentum is building", Message: "You're building confidence with each debt you eliminate. Keep rolling that snowball!"},
	},
	domain.StrategyAvalanche: {
		{Title: "Smart strategy", Message: "Tackling high-interest debt first saves you money in the long run. Smart strategy!"},
		{Title: "Fighting expensive interest", Message: "The avalanche method maximizes your savings. Every payment fights expensive interest."},
		{Title: "Playing the long game", Message: "You're being strategic about interest costs. This approach will pay off big time!"},
	},
}

var milestoneTemplates = map[string][]domain.NudgeCandidate{
	"early": {
		{Title: "The hardest step is behind you", Message: "Starting your debt payoff journey takes courage. You've taken the hardest step!"},
		{Title: "Building good habits", Message: "The beginning is always the toughest part. You're building habits that will serve you well."},
		{Title: "On the right path", Message: "Every expert was once a beginner. You're on the right path to financial freedom."},
	},
	"middle": {
		{Title: "Persistence pays off", Message: "You're in the thick of it now. This is where persistence pays off the most."},
		{Title: "Proving your commitment", Message: "The middle stretch tests your resolve. You're proving your commitment to your goals."},
		{Title: "Too far to stop now", Message: "Keep pushing through. You've come too far to give up now."},
	},
	"late": {
		{Title: "Almost there", Message: "You're so close to the finish line! Don't let up now."},
		{Title: "The end is in sight", Message: "The end is in sight. Your hard work is about to pay off in a big way."},
		{Title: "Freedom within reach", Message: "You've shown incredible discipline. Financial freedom is within reach!"},
	},
}

var generalTemplates = []domain.NudgeCandidate{
	{Title: "Progress, not perfection", Message: "You're making progress on your debt journey! Every payment brings you closer to financial freedom."},
	{Title: "Consistency wins", Message: "Stay focused on your debt payoff goal. Consistency is the key to success."},
	{Title: "Better habits, better future", Message: "Your dedication to eliminating debt is building better financial habits for your future."},
	{Title: "Invest in yourself", Message: "Each payment you make is an investment in your financial independence. Keep going!"},
	{Title: "You have what it takes", Message: "Debt payoff requires discipline, but you're proving you have what it takes."},
	{Title: "Remember your why", Message: "Remember why you started this journey. Financial freedom is worth the effort."},
	{Title: "Trust the process", Message: "You're building momentum with each payment. Trust the process and stay committed."},
	{Title: "Every dollar counts", Message: "Every dollar toward debt is a step toward your financial goals. You've got this!"},
}

// errorFallback is the last resort when even the plan context is unusable.
var errorFallback = domain.NudgeCandidate{
	Title:   "Keep going",
	Message: "Stay committed to your financial goals. Every step forward matters.",
}

// FallbackTemplates returns every template by category for auditing.
func FallbackTemplates() map[string][]domain.NudgeCandidate {
	all := map[string][]domain.NudgeCandidate{
		"general": generalTemplates,
		"error":   {errorFallback},
	}
	for strategy, ts := range strategyTemplates {
		all[string(strategy)] = ts
	}
	for milestone, ts := range milestoneTemplates {
		all[milestone] = ts
	}
	return all
}

// selectFallback picks a deterministic template keyed by the plan context:
// strategy first, then milestone, then the general pool. Selection hashes
// the stable job identity rather than using randomness so that duplicate
// jobs for the same request produce identical nudges.
func selectFallback(userID string, facts domain.PlanFacts, reason string) domain.NudgeCandidate {
	seed := userID + "|" + string(facts.Strategy) + "|" + facts.Milestone() + "|" + reason

	if ts, ok := strategyTemplates[facts.Strategy]; ok {
		return ts[templateIndex(seed, len(ts))]
	}
	if facts.TotalMonths > 0 {
		if ts, ok := milestoneTemplates[facts.Milestone()]; ok {
			return ts[templateIndex(seed, len(ts))]
		}
	}
	if len(generalTemplates) > 0 {
		return generalTemplates[templateIndex(seed, len(generalTemplates))]
	}
	return errorFallback
}

func templateIndex(seed string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return int(h.Sum32() % uint32(n))
}
