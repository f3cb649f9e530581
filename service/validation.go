package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"debt-coach/domain"
)

// Validator is the numeric-safety gate for generated nudges. Every
// numeric-looking token in a candidate must be traceable to a value in the
// source plan; a single unmatched token rejects the whole candidate.
//
// Normalization rule: a token is parsed as a decimal after stripping
// currency symbols, spaces and thousands separators. It matches a plan
// fact when the fact, rounded half-up to the number of decimal places the
// token displays, equals the token value. Year tokens are compared against
// total_months/12 under the same rule. Tokens denominated in units the
// plan has no facts for (weeks, cents) never match.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// RejectionError reports why a candidate failed the numeric-safety pass.
// It is absorbed by the pipeline (fallback), never surfaced to the caller.
type RejectionError struct {
	Tokens []string
	Reason string
}

func (e *RejectionError) Error() string {
	if len(e.Tokens) > 0 {
		return fmt.Sprintf("candidate rejected: unverified numeric tokens %v", e.Tokens)
	}
	return "candidate rejected: " + e.Reason
}

const (
	tokenCurrency = "currency"
	tokenPercent  = "percent"
	tokenMonths   = "months"
	tokenYears    = "years"
	tokenBare     = "bare"
	tokenUnknown  = "unknown_unit"
)

var numericTokenPattern = regexp.MustCompile(
	`(?i)(\$)?\s?(\d[\d,]*(?:\.\d+)?)(?:\s?(%|(?:percent|months?|years?|weeks?|dollars?|cents?)\b))?`)

type numericToken struct {
	raw    string
	value  decimal.Decimal
	kind   string
	places int32
}

// Validate checks a candidate against the plan's allowed-fact set. A nil
// return means the candidate is safe to deliver as-is.
func (v *Validator) Validate(c domain.NudgeCandidate, facts domain.PlanFacts) error {
	message := strings.TrimSpace(c.Message)
	if len(message) < 20 {
		return &RejectionError{Reason: "message too short or empty"}
	}

	var unverified []string
	for _, tok := range scanNumericTokens(c.Title + "\n" + c.Message) {
		if !v.tokenVerified(tok, facts) {
			unverified = append(unverified, tok.raw)
		}
	}
	if len(unverified) > 0 {
		return &RejectionError{Tokens: unverified}
	}
	return nil
}

// ScanNumericTokens returns the raw numeric tokens found in text. Exposed
// for the offline fallback-template audit, which requires zero tokens.
func (v *Validator) ScanNumericTokens(text string) []string {
	tokens := scanNumericTokens(text)
	raws := make([]string, 0, len(tokens))
	for _, t := range tokens {
		raws = append(raws, t.raw)
	}
	return raws
}

func scanNumericTokens(text string) []numericToken {
	var tokens []numericToken
	for _, m := range numericTokenPattern.FindAllStringSubmatch(text, -1) {
		literal := m[2]
		value, err := decimal.NewFromString(strings.ReplaceAll(literal, ",", ""))
		if err != nil {
			continue
		}
		tokens = append(tokens, numericToken{
			raw:    strings.TrimSpace(m[0]),
			value:  value,
			kind:   classifyToken(m[1], m[3]),
			places: decimalPlaces(literal),
		})
	}
	return tokens
}

func classifyToken(symbol, unit string) string {
	if symbol == "$" {
		return tokenCurrency
	}
	switch u := strings.ToLower(unit); {
	case u == "":
		return tokenBare
	case u == "%" || u == "percent":
		return tokenPercent
	case strings.HasPrefix(u, "month"):
		return tokenMonths
	case strings.HasPrefix(u, "year"):
		return tokenYears
	case strings.HasPrefix(u, "dollar"):
		return tokenCurrency
	default:
		// weeks, cents: the plan carries no facts in these units.
		return tokenUnknown
	}
}

func decimalPlaces(literal string) int32 {
	if i := strings.IndexByte(literal, '.'); i >= 0 {
		return int32(len(literal) - i - 1)
	}
	return 0
}

func (v *Validator) tokenVerified(tok numericToken, facts domain.PlanFacts) bool {
	totalMonths := decimal.NewFromInt(int64(facts.TotalMonths))
	totalYears := decimal.Zero
	if facts.TotalMonths > 0 {
		totalYears = totalMonths.Div(twelve)
	}

	amounts := []decimal.Decimal{facts.TotalDebt, facts.MonthlyPayment, facts.TotalInterest}
	rates := make([]decimal.Decimal, 0, len(facts.Debts))
	for _, d := range facts.Debts {
		amounts = append(amounts, d.Balance)
		rates = append(rates, d.AnnualRate)
	}

	switch tok.kind {
	case tokenCurrency:
		return matchesAny(tok, amounts)
	case tokenPercent:
		return matchesAny(tok, rates)
	case tokenMonths:
		return matchesAny(tok, []decimal.Decimal{totalMonths})
	case tokenYears:
		return matchesAny(tok, []decimal.Decimal{totalYears})
	case tokenBare:
		candidates := append(append([]decimal.Decimal{totalMonths, totalYears}, amounts...), rates...)
		return matchesAny(tok, candidates)
	default:
		return false
	}
}

func matchesAny(tok numericToken, facts []decimal.Decimal) bool {
	for _, f := range facts {
		if f.Round(tok.places).Equal(tok.value) {
			return true
		}
	}
	return false
}
