package budget

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

type InsightType string

const (
	InsightWarning        InsightType = "warning"
	InsightRecommendation InsightType = "recommendation"
	InsightAchievement    InsightType = "achievement"
)

type Impact int

const (
	ImpactLow    Impact = 1
	ImpactMedium Impact = 2
	ImpactHigh   Impact = 3
)

func (i Impact) String() string {
	switch i {
	case ImpactHigh:
		return "high"
	case ImpactMedium:
		return "medium"
	case ImpactLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText keeps the JSON form readable.
func (i Impact) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Impact) UnmarshalText(text []byte) error {
	switch string(text) {
	case "high":
		*i = ImpactHigh
	case "medium":
		*i = ImpactMedium
	case "low":
		*i = ImpactLow
	default:
		return fmt.Errorf("unknown impact '%s'", text)
	}
	return nil
}

const HighSavingsRatePercent = 20.0

type Insight struct {
	Type     InsightType          `json:"type"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Impact   Impact               `json:"impact"`
	Category *TransactionCategory `json:"category,omitempty"`
	// Amount is the overage for exceeded budgets and the spend for the
	// top category.
	Amount float64 `json:"amount,omitempty"`
	// Percentage is the share of the limit used, or the savings rate.
	Percentage float64 `json:"percentage,omitempty"`
}

// GenerateInsights evaluates budget, savings and top-category rules and
// returns the results ordered by impact. Equal impacts keep rule order.
func GenerateInsights(budgets []Budget, transactions []Transaction, summary SpendingSummary) []Insight {
	var insights []Insight

	for _, b := range budgets {
		category := b.Category
		if b.IsOverMonthlyBudget() {
			overage := math.Abs(b.MonthlyRemaining())
			insights = append(insights, Insight{
				Type:     InsightWarning,
				Title:    "Budget Exceeded",
				Message:  fmt.Sprintf("You've exceeded your %s budget by $%s", category, money(overage)),
				Impact:   ImpactHigh,
				Category: &category,
				Amount:   overage,
			})
		} else if b.MonthlyLimit > 0 && b.MonthlyPercentage() >= WarningThresholdPercent {
			used := b.MonthlyPercentage()
			insights = append(insights, Insight{
				Type:       InsightRecommendation,
				Title:      "Approaching Limit",
				Message:    fmt.Sprintf("You've used %s%% of your %s budget", decimal.NewFromFloat(used).StringFixed(0), category),
				Impact:     ImpactMedium,
				Category:   &category,
				Percentage: used,
			})
		}
	}

	if rate := summary.SavingsRate(); rate > HighSavingsRatePercent {
		insights = append(insights, Insight{
			Type:       InsightAchievement,
			Title:      "Great Saving!",
			Message:    fmt.Sprintf("You're saving %s%% of your income this month", decimal.NewFromFloat(rate).StringFixed(0)),
			Impact:     ImpactHigh,
			Percentage: rate,
		})
	}

	if summary.TopSpendingCategory != nil {
		top := *summary.TopSpendingCategory
		amount := summary.CategoryBreakdown[top]
		insights = append(insights, Insight{
			Type:     InsightRecommendation,
			Title:    "Top Spending Category",
			Message:  fmt.Sprintf("%s is your highest expense at $%s", top, money(amount)),
			Impact:   ImpactMedium,
			Category: &top,
			Amount:   amount,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Impact > insights[j].Impact
	})
	return insights
}

func money(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
