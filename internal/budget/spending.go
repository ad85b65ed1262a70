package budget

import (
	"math"
	"strings"
	"time"
)

// Period is a calendar month, or a whole year when Month is 0.
type Period struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func YearOf(t time.Time) Period {
	return Period{Year: t.Year()}
}

// Previous returns the calendar month before p. For yearly periods it
// returns the previous year.
func (p Period) Previous() Period {
	if p.Month == 0 {
		return Period{Year: p.Year - 1}
	}
	prev := time.Date(p.Year, p.Month-1, 1, 0, 0, 0, 0, time.UTC)
	return Period{Year: prev.Year(), Month: prev.Month()}
}

// Contains compares calendar fields of t in loc.
func (p Period) Contains(t time.Time, loc *time.Location) bool {
	if loc != nil {
		t = t.In(loc)
	}
	if t.Year() != p.Year {
		return false
	}
	return p.Month == 0 || t.Month() == p.Month
}

func (s SpendingSummary) NetCashFlow() float64 {
	return s.TotalIncome - s.TotalExpenses
}

// SavingsRate is net cash flow as a percentage of income, 0 without income.
func (s SpendingSummary) SavingsRate() float64 {
	if s.TotalIncome <= 0 {
		return 0
	}
	return (s.NetCashFlow() / s.TotalIncome) * 100
}

// Summarize aggregates the calendar month containing ref. Ties for the
// top category go to the category seen first.
func Summarize(transactions []Transaction, ref time.Time, categorize CategorizeFunc) SpendingSummary {
	categorize = orDefault(categorize)
	loc := ref.Location()
	current := MonthOf(ref)

	summary := SpendingSummary{
		CategoryBreakdown: make(map[TransactionCategory]float64),
	}
	var order []TransactionCategory

	for _, t := range transactions {
		if !current.Contains(t.Date, loc) {
			continue
		}
		if t.Amount < 0 {
			summary.TotalIncome += math.Abs(t.Amount)
			continue
		}
		category := categorize(t.Category)
		if _, seen := summary.CategoryBreakdown[category]; !seen {
			order = append(order, category)
		}
		summary.TotalExpenses += t.Amount
		summary.CategoryBreakdown[category] += t.Amount
	}

	for _, category := range order {
		if summary.TopSpendingCategory == nil || summary.CategoryBreakdown[category] > summary.CategoryBreakdown[*summary.TopSpendingCategory] {
			top := category
			summary.TopSpendingCategory = &top
		}
	}

	previousExpenses := totalExpenses(transactions, current.Previous(), loc)
	// No spending last month reads as "no change".
	if previousExpenses > 0 {
		summary.MonthOverMonth = ((summary.TotalExpenses - previousExpenses) / previousExpenses) * 100
	}

	return summary
}

// BucketByCategory totals the expenses of one period per category. Dates
// are read in loc, as Summarize reads them in the reference date's zone.
func BucketByCategory(transactions []Transaction, categorize CategorizeFunc, period Period, loc *time.Location) map[TransactionCategory]float64 {
	categorize = orDefault(categorize)
	buckets := make(map[TransactionCategory]float64)
	for _, t := range transactions {
		if !t.IsExpense() || !period.Contains(t.Date, loc) {
			continue
		}
		buckets[categorize(t.Category)] += t.Amount
	}
	return buckets
}

func totalExpenses(transactions []Transaction, period Period, loc *time.Location) float64 {
	total, _ := expensesMatching(transactions, period, loc, matchAll)
	return total
}

func expensesMatching(transactions []Transaction, period Period, loc *time.Location, match func(Transaction) bool) (float64, int) {
	var (
		total float64
		count int
	)
	for _, t := range transactions {
		if t.IsExpense() && period.Contains(t.Date, loc) && match(t) {
			total += t.Amount
			count++
		}
	}
	return total, count
}

func sameCategoryName(name string, category TransactionCategory) bool {
	return strings.EqualFold(strings.TrimSpace(name), string(category))
}
