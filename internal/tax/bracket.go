package tax

import (
	"math"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
)

// Bracket is one marginal slice of a progressive table. Income above
// Threshold (up to the next bracket's threshold) is taxed at Rate.
type Bracket struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Rate      float64 `json:"rate" yaml:"rate"`
}

// ComputeProgressiveTax taxes each slice of income at its bracket's rate.
// Brackets must be ordered by ascending threshold. Negative income is
// treated as zero.
func ComputeProgressiveTax(income float64, brackets []Bracket) float64 {
	if income <= 0 {
		return 0
	}

	var total float64
	for i, bracket := range brackets {
		if income <= bracket.Threshold {
			break
		}

		upper := math.Inf(1)
		if i < len(brackets)-1 {
			upper = brackets[i+1].Threshold
		}

		taxableInBracket := math.Min(income, upper) - bracket.Threshold
		if taxableInBracket > 0 {
			total += taxableInBracket * bracket.Rate
		}
	}
	return total
}

// ValidateBrackets checks that thresholds are non-negative and strictly
// increasing and that every rate is in [0, 1).
func ValidateBrackets(name string, brackets []Bracket) error {
	for i, b := range brackets {
		if b.Threshold < 0 {
			return appErrors.InvalidInput("%s bracket %d has negative threshold %.2f", name, i, b.Threshold)
		}
		if b.Rate < 0 || b.Rate >= 1 {
			return appErrors.InvalidInput("%s bracket %d has rate %v outside [0, 1)", name, i, b.Rate)
		}
		if i > 0 && b.Threshold <= brackets[i-1].Threshold {
			return appErrors.InvalidInput("%s bracket thresholds must be strictly increasing (bracket %d: %.2f <= %.2f)",
				name, i, b.Threshold, brackets[i-1].Threshold)
		}
	}
	return nil
}
