package budget

import (
	"time"
)

// REQUESTS START:
type IncomeRequest struct {
	AnnualSalary       float64
	PretaxContribution float64
}

type CategoryRequest struct {
	Name       string
	Percentage float64
	Icon       string
	Color      string
}

type TransactionRequest struct {
	AccountID    string
	Amount       float64
	Date         time.Time
	MerchantName string
	Category     []string
	Pending      bool
}

type UpdateBudgetLimitRequest struct {
	ID           string
	MonthlyLimit float64
	YearlyLimit  float64
}

type AlertRequest struct {
	EmailID      string
	Merchant     string
	Date         time.Time
	Amount       float64
	RawEmailBody string
}

// REQUESTS END:

// MODELS:

type IncomeProfile struct {
	ID                 string  `json:"id"`
	AnnualSalary       float64 `json:"annual_salary"`
	PretaxContribution float64 `json:"pretax_contribution"`
	FederalTax         float64 `json:"federal_tax"`
	SocialSecurityTax  float64 `json:"social_security_tax"`
	MedicareTax        float64 `json:"medicare_tax"`
	StateTax           float64 `json:"state_tax"`
	CityTax            float64 `json:"city_tax"`
}

type CategoryMeta struct {
	Icon  string
	Color string
}

type BudgetCategory struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Percentage        float64 `json:"percentage"`
	Icon              string  `json:"icon"`
	Color             string  `json:"color"`
	CurrentMonthSpent float64 `json:"current_month_spent"`
}

type BudgetAllocation struct {
	Categories        []BudgetCategory `json:"categories"`
	EmergencyBufferID string           `json:"emergency_buffer_id"`
}

type Transaction struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	Amount       float64   `json:"amount"`
	Date         time.Time `json:"date"`
	MerchantName string    `json:"merchant_name,omitempty"`
	Category     []string  `json:"category"`
	Pending      bool      `json:"pending"`
}

// PrimaryCategory is the first raw label, or "Other" when there is none.
func (t Transaction) PrimaryCategory() string {
	if len(t.Category) == 0 {
		return string(CategoryOther)
	}
	return t.Category[0]
}

// IsExpense reports whether money left the account. Income arrives as a
// negative amount.
func (t Transaction) IsExpense() bool {
	return t.Amount > 0
}

type BudgetStatus string

const (
	StatusHealthy  BudgetStatus = "healthy"
	StatusWarning  BudgetStatus = "warning"
	StatusExceeded BudgetStatus = "exceeded"
)

type Budget struct {
	ID                string              `json:"id"`
	Category          TransactionCategory `json:"category"`
	MonthlyLimit      float64             `json:"monthly_limit"`
	YearlyLimit       float64             `json:"yearly_limit"`
	CurrentMonthSpent float64             `json:"current_month_spent"`
	CurrentYearSpent  float64             `json:"current_year_spent"`
}

type SpendingSummary struct {
	TotalIncome         float64                         `json:"total_income"`
	TotalExpenses       float64                         `json:"total_expenses"`
	CategoryBreakdown   map[TransactionCategory]float64 `json:"category_breakdown"`
	MonthOverMonth      float64                         `json:"month_over_month"`
	TopSpendingCategory *TransactionCategory            `json:"top_spending_category,omitempty"`
}

type PeriodSnapshot struct {
	ID   string `json:"id"`
	Year int    `json:"year"`
	// Month is nil for a yearly snapshot.
	Month            *int      `json:"month,omitempty"`
	TakeHome         float64   `json:"take_home"`
	TotalSpending    float64   `json:"total_spending"`
	Savings          float64   `json:"savings"`
	TransactionCount int       `json:"transaction_count"`
	CreatedAt        time.Time `json:"created_at"`
}

type TransactionAlert struct {
	ID                  string    `json:"id"`
	EmailID             string    `json:"email_id"`
	Merchant            string    `json:"merchant"`
	Date                time.Time `json:"date"`
	Amount              float64   `json:"amount"`
	RawEmailBody        string    `json:"raw_email_body"`
	ReceivedAt          time.Time `json:"received_at"`
	IsLinked            bool      `json:"is_linked"`
	LinkedTransactionID string    `json:"linked_transaction_id,omitempty"`
}

// RESPONSES:

type AllocationResponse struct {
	Allocation                BudgetAllocation `json:"allocation"`
	MonthlyTakeHome           float64          `json:"monthly_take_home"`
	TotalPercentage           float64          `json:"total_percentage"`
	EmergencyBufferPercentage float64          `json:"emergency_buffer_percentage"`
	EmergencyBufferAmount     float64          `json:"emergency_buffer_amount"`
	IsValid                   bool             `json:"is_valid"`
	IsOverAllocated           bool             `json:"is_over_allocated"`
	ValidationMessage         string           `json:"validation_message,omitempty"`
}

type BudgetResponse struct {
	Budget
	MonthlyPercentage float64      `json:"monthly_percentage"`
	MonthlyRemaining  float64      `json:"monthly_remaining"`
	YearlyPercentage  float64      `json:"yearly_percentage"`
	YearlyRemaining   float64      `json:"yearly_remaining"`
	Status            BudgetStatus `json:"status"`
}

type SnapshotResponse struct {
	PeriodSnapshot
	DisplayName string      `json:"display_name"`
	ColorStatus ColorStatus `json:"color_status"`
}

type Dashboard struct {
	Summary     SpendingSummary    `json:"summary"`
	NetCashFlow float64            `json:"net_cash_flow"`
	SavingsRate float64            `json:"savings_rate"`
	Budgets     []BudgetResponse   `json:"budgets"`
	Allocation  AllocationResponse `json:"allocation"`
	Insights    []Insight          `json:"insights"`
}
