package budget

import (
	"time"

	"github.com/google/uuid"
)

// WarningThresholdPercent is the share of a monthly limit at which a
// budget stops being healthy.
const WarningThresholdPercent = 80.0

func (b Budget) MonthlyPercentage() float64 {
	if b.MonthlyLimit <= 0 {
		return 0
	}
	return (b.CurrentMonthSpent / b.MonthlyLimit) * 100
}

func (b Budget) YearlyPercentage() float64 {
	if b.YearlyLimit <= 0 {
		return 0
	}
	return (b.CurrentYearSpent / b.YearlyLimit) * 100
}

// MonthlyRemaining goes negative once the budget is exceeded.
func (b Budget) MonthlyRemaining() float64 {
	return b.MonthlyLimit - b.CurrentMonthSpent
}

func (b Budget) YearlyRemaining() float64 {
	return b.YearlyLimit - b.CurrentYearSpent
}

func (b Budget) IsOverMonthlyBudget() bool {
	return b.CurrentMonthSpent > b.MonthlyLimit
}

func (b Budget) IsOverYearlyBudget() bool {
	return b.CurrentYearSpent > b.YearlyLimit
}

func (b Budget) Status() BudgetStatus {
	switch pct := b.MonthlyPercentage(); {
	case pct >= 100:
		return StatusExceeded
	case pct >= WarningThresholdPercent:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// UpdateBudgets recomputes month and year spend for every budget from the
// full transaction list. Cached values are replaced, never incremented.
func UpdateBudgets(budgets []Budget, transactions []Transaction, ref time.Time, categorize CategorizeFunc) []Budget {
	categorize = orDefault(categorize)
	loc := ref.Location()

	updated := make([]Budget, len(budgets))
	for i, b := range budgets {
		inCategory := func(t Transaction) bool {
			return categorize(t.Category) == b.Category
		}
		b.CurrentMonthSpent, _ = expensesMatching(transactions, MonthOf(ref), loc, inCategory)
		b.CurrentYearSpent, _ = expensesMatching(transactions, YearOf(ref), loc, inCategory)
		updated[i] = b
	}
	return updated
}

// RefreshAllocationSpending resets every category's month spend and
// recomputes it from expenses whose category carries the same name.
func RefreshAllocationSpending(allocation BudgetAllocation, transactions []Transaction, ref time.Time, categorize CategorizeFunc) BudgetAllocation {
	categorize = orDefault(categorize)
	updated := allocation.clone()
	for i, c := range updated.Categories {
		updated.Categories[i].CurrentMonthSpent, _ = expensesMatching(transactions, MonthOf(ref), ref.Location(), func(t Transaction) bool {
			return sameCategoryName(c.Name, categorize(t.Category))
		})
	}
	return updated
}

func DefaultBudgets() []Budget {
	limits := []struct {
		category TransactionCategory
		monthly  float64
	}{
		{CategoryFood, 600},
		{CategoryShopping, 400},
		{CategoryTransportation, 300},
		{CategoryEntertainment, 200},
		{CategoryUtilities, 250},
	}

	budgets := make([]Budget, 0, len(limits))
	for _, l := range limits {
		budgets = append(budgets, Budget{
			ID:           uuid.New().String(),
			Category:     l.category,
			MonthlyLimit: l.monthly,
			YearlyLimit:  l.monthly * MonthsPerYear,
		})
	}
	return budgets
}
