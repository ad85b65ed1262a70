package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/fatali-fataliyev/budget_insight/internal/budget"
)

const dateLayout = "2006-01-02"

// REQUESTS START:
type UpdateIncomeRequest struct {
	AnnualSalary       float64 `json:"annual_salary"`
	PretaxContribution float64 `json:"pretax_contribution"`
}

type CreateCategoryRequest struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
}

type UpdateCategoryRequest struct {
	Percentage *float64 `json:"percentage"`
}

type CreateTransactionRequest struct {
	AccountID    string   `json:"account_id"`
	Amount       float64  `json:"amount"` // negative for income
	Date         string   `json:"date"`   // RFC3339 or YYYY-MM-DD, empty for now
	MerchantName string   `json:"merchant_name"`
	Category     []string `json:"category"`
	Pending      bool     `json:"pending"`
}

type UpdateBudgetRequest struct {
	MonthlyLimit float64 `json:"monthly_limit"`
	YearlyLimit  float64 `json:"yearly_limit"`
}

type CreateAlertRequest struct {
	EmailID      string  `json:"email_id"`
	Merchant     string  `json:"merchant"`
	Date         string  `json:"date"`
	Amount       float64 `json:"amount"`
	RawEmailBody string  `json:"raw_email_body"`
}

type LinkAlertRequest struct {
	TransactionID string `json:"transaction_id"`
}

//REQUESTS END:

//RESPONSES:

type ListTransactionResponse struct {
	Transactions []budget.Transaction `json:"transactions"`
}

type ListBudgetResponse struct {
	Budgets []budget.BudgetResponse `json:"budgets"`
}

type ListSnapshotResponse struct {
	Period    budget.PeriodType         `json:"period"`
	Snapshots []budget.SnapshotResponse `json:"snapshots"`
}

type ListAlertResponse struct {
	Alerts []budget.TransactionAlert `json:"alerts"`
}

type IncomeResponse struct {
	budget.IncomeProfile
	TaxableIncome   float64 `json:"taxable_income"`
	TotalTax        float64 `json:"total_tax"`
	AnnualTakeHome  float64 `json:"annual_take_home"`
	MonthlyTakeHome float64 `json:"monthly_take_home"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

//RESPONSES END:

func httpStatusFromError(err error) int {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrNotFound:
		return 404 // not found
	case appErrors.ErrInvalidInput:
		return 400 // bad request
	case appErrors.ErrConflict:
		return 409 // conflict
	default:
		return 500 //internal error
	}
}

func IncomeToHttp(income budget.IncomeProfile) IncomeResponse {
	return IncomeResponse{
		IncomeProfile:   income,
		TaxableIncome:   income.TaxableIncome(),
		TotalTax:        income.TotalTax(),
		AnnualTakeHome:  income.AnnualTakeHome(),
		MonthlyTakeHome: income.MonthlyTakeHome(),
	}
}

// parseDate accepts RFC3339 timestamps and plain dates. Plain dates are
// taken as midnight in the server's zone, the zone refreshes bucket by.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, appErrors.InvalidInput("invalid date '%s', expected YYYY-MM-DD or RFC3339", value)
	}
	return t, nil
}

func MatchValidateParams(params url.Values) (float64, time.Time, error) {
	amountStr := params.Get("amount")
	if amountStr == "" {
		return 0, time.Time{}, appErrors.InvalidInput("amount is required")
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return 0, time.Time{}, appErrors.InvalidInput("invalid amount: '%s'", amountStr)
	}

	dateStr := params.Get("date")
	if dateStr == "" {
		return 0, time.Time{}, appErrors.InvalidInput("date is required")
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return 0, time.Time{}, err
	}
	return amount, date, nil
}

func periodParam(params url.Values) budget.PeriodType {
	period := strings.ToLower(strings.TrimSpace(params.Get("period")))
	if period == "" {
		return budget.PeriodMonthly
	}
	return budget.PeriodType(period)
}

func invalidBody(err error) string {
	return fmt.Sprintf("invalid request body: %s", err.Error())
}
