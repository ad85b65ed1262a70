package budget

import (
	"math"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/fatali-fataliyev/budget_insight/internal/tax"
	"github.com/google/uuid"
)

const MonthsPerYear = 12

// ValidateIncome rejects inputs the tax calculation must never see.
func ValidateIncome(annualSalary float64, pretaxContribution float64) error {
	if math.IsNaN(annualSalary) || math.IsNaN(pretaxContribution) {
		return appErrors.InvalidInput("salary and contribution must be numbers")
	}
	if annualSalary < 0 {
		return appErrors.InvalidInput("annual salary cannot be negative")
	}
	if annualSalary > MAX_AMOUNT_LIMIT {
		return appErrors.InvalidInput("annual salary is too large, the limit is: %.2f", MAX_AMOUNT_LIMIT)
	}
	if pretaxContribution < 0 {
		return appErrors.InvalidInput("pre-tax contribution cannot be negative")
	}
	if pretaxContribution > annualSalary {
		return appErrors.InvalidInput("pre-tax contribution cannot exceed salary")
	}
	return nil
}

// DeriveIncome builds a profile from already computed taxes. It does not
// clamp or round; callers validate with ValidateIncome first.
func DeriveIncome(annualSalary float64, pretaxContribution float64, taxes tax.Breakdown) IncomeProfile {
	return IncomeProfile{
		ID:                 uuid.New().String(),
		AnnualSalary:       annualSalary,
		PretaxContribution: pretaxContribution,
		FederalTax:         taxes.Federal,
		SocialSecurityTax:  taxes.SocialSecurity,
		MedicareTax:        taxes.Medicare,
		StateTax:           taxes.State,
		CityTax:            taxes.City,
	}
}

func (p IncomeProfile) TaxableIncome() float64 {
	return p.AnnualSalary - p.PretaxContribution
}

func (p IncomeProfile) TotalTax() float64 {
	return p.FederalTax + p.SocialSecurityTax + p.MedicareTax + p.StateTax + p.CityTax
}

func (p IncomeProfile) AnnualTakeHome() float64 {
	return p.AnnualSalary - p.PretaxContribution - p.TotalTax()
}

func (p IncomeProfile) MonthlyTakeHome() float64 {
	return p.AnnualTakeHome() / MonthsPerYear
}
