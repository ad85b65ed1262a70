package budget

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type PeriodType string

const (
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
)

type ColorStatus string

const (
	ColorGreen  ColorStatus = "green"
	ColorYellow ColorStatus = "yellow"
	ColorRed    ColorStatus = "red"
)

// YellowSpendingRatio is the share of take-home pay at which a period is
// no longer comfortably under budget.
const YellowSpendingRatio = 0.9

func (s PeriodSnapshot) PeriodType() PeriodType {
	if s.Month != nil {
		return PeriodMonthly
	}
	return PeriodYearly
}

func (s PeriodSnapshot) Period() Period {
	if s.Month == nil {
		return Period{Year: s.Year}
	}
	return Period{Year: s.Year, Month: time.Month(*s.Month)}
}

// DisplayName is "January 2025" for months and "2025" for years.
func (s PeriodSnapshot) DisplayName() string {
	if s.Month == nil {
		return time.Date(s.Year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	}
	return time.Date(s.Year, time.Month(*s.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

func (s PeriodSnapshot) ColorStatus() ColorStatus {
	if s.TakeHome <= 0 {
		if s.TotalSpending > 0 {
			return ColorRed
		}
		return ColorGreen
	}
	switch ratio := s.TotalSpending / s.TakeHome; {
	case ratio > 1:
		return ColorRed
	case ratio >= YellowSpendingRatio:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// MonthlySnapshot totals the expenses of one calendar month against the
// monthly take-home pay.
func MonthlySnapshot(year int, month time.Month, monthlyTakeHome float64, transactions []Transaction, now time.Time) PeriodSnapshot {
	spent, count := expensesMatching(transactions, Period{Year: year, Month: month}, now.Location(), matchAll)
	m := int(month)
	return PeriodSnapshot{
		ID:               uuid.New().String(),
		Year:             year,
		Month:            &m,
		TakeHome:         monthlyTakeHome,
		TotalSpending:    spent,
		Savings:          monthlyTakeHome - spent,
		TransactionCount: count,
		CreatedAt:        now,
	}
}

// YearlySnapshot scales the monthly take-home pay to a year.
func YearlySnapshot(year int, monthlyTakeHome float64, transactions []Transaction, now time.Time) PeriodSnapshot {
	annual := monthlyTakeHome * MonthsPerYear
	spent, count := expensesMatching(transactions, Period{Year: year}, now.Location(), matchAll)
	return PeriodSnapshot{
		ID:               uuid.New().String(),
		Year:             year,
		TakeHome:         annual,
		TotalSpending:    spent,
		Savings:          annual - spent,
		TransactionCount: count,
		CreatedAt:        now,
	}
}

// UpsertSnapshot replaces the snapshot covering the same period, keeping
// its ID, or appends a new one.
func UpsertSnapshot(snapshots []PeriodSnapshot, snapshot PeriodSnapshot) []PeriodSnapshot {
	updated := make([]PeriodSnapshot, len(snapshots), len(snapshots)+1)
	copy(updated, snapshots)
	for i, existing := range updated {
		if existing.Period() == snapshot.Period() {
			snapshot.ID = existing.ID
			updated[i] = snapshot
			return updated
		}
	}
	return append(updated, snapshot)
}

// SortSnapshots orders snapshots newest period first.
func SortSnapshots(snapshots []PeriodSnapshot) []PeriodSnapshot {
	sorted := make([]PeriodSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Period(), sorted[j].Period()
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})
	return sorted
}

func matchAll(Transaction) bool { return true }
