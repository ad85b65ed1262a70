package tax

import "math"

// Breakdown is the per-category tax owed for one year.
type Breakdown struct {
	Federal        float64 `json:"federal"`
	SocialSecurity float64 `json:"social_security"`
	Medicare       float64 `json:"medicare"`
	State          float64 `json:"state"`
	City           float64 `json:"city"`
}

func (b Breakdown) Total() float64 {
	return b.Federal + b.SocialSecurity + b.Medicare + b.State + b.City
}

type Calculator struct {
	schedule Schedule
}

func NewCalculator(schedule Schedule) *Calculator {
	return &Calculator{schedule: schedule}
}

func (c *Calculator) Schedule() Schedule {
	return c.schedule
}

// Federal applies the standard deduction before the federal table.
func (c *Calculator) Federal(taxableIncome float64) float64 {
	deducted := math.Max(0, taxableIncome-c.schedule.StandardDeduction)
	return ComputeProgressiveTax(deducted, c.schedule.Federal)
}

func (c *Calculator) SocialSecurity(grossIncome float64) float64 {
	return c.schedule.SocialSecurity.apply(grossIncome)
}

func (c *Calculator) Medicare(grossIncome float64) float64 {
	return c.schedule.Medicare.apply(grossIncome)
}

func (c *Calculator) State(taxableIncome float64) float64 {
	return ComputeProgressiveTax(taxableIncome, c.schedule.State)
}

func (c *Calculator) City(taxableIncome float64) float64 {
	return ComputeProgressiveTax(taxableIncome, c.schedule.City)
}

// Compute returns every tax category for a salary with a pre-tax
// contribution. Payroll taxes use the gross salary, income taxes the
// salary net of the contribution.
func (c *Calculator) Compute(annualSalary float64, pretaxContribution float64) Breakdown {
	taxable := annualSalary - pretaxContribution
	return Breakdown{
		Federal:        c.Federal(taxable),
		SocialSecurity: c.SocialSecurity(annualSalary),
		Medicare:       c.Medicare(annualSalary),
		State:          c.State(taxable),
		City:           c.City(taxable),
	}
}

func (f FlatRate) apply(income float64) float64 {
	if income <= 0 {
		return 0
	}
	if f.WageBase > 0 {
		income = math.Min(income, f.WageBase)
	}
	return income * f.Rate
}
