package tax

import (
	"testing"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-6

func TestComputeProgressiveTax(t *testing.T) {
	twoBrackets := []Bracket{{0, 0.10}, {50_000, 0.20}}

	tests := []struct {
		name     string
		income   float64
		brackets []Bracket
		want     float64
	}{
		{name: "zero income", income: 0, brackets: twoBrackets, want: 0},
		{name: "negative income clamps to zero", income: -5_000, brackets: twoBrackets, want: 0},
		{name: "inside first bracket", income: 20_000, brackets: twoBrackets, want: 2_000},
		{name: "exactly at second threshold", income: 50_000, brackets: twoBrackets, want: 5_000},
		{name: "spans both brackets", income: 100_000, brackets: twoBrackets, want: 15_000},
		{name: "no brackets", income: 100_000, brackets: nil, want: 0},
		{name: "below first threshold", income: 9_000, brackets: []Bracket{{10_000, 0.3}}, want: 0},
		{name: "at first threshold", income: 10_000, brackets: []Bracket{{10_000, 0.3}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeProgressiveTax(tt.income, tt.brackets), delta)
		})
	}
}

func TestComputeProgressiveTaxFlatTable(t *testing.T) {
	flat := []Bracket{{0, 0.25}}
	for _, income := range []float64{0, 1, 999.99, 42_000, 1_000_000} {
		assert.InDelta(t, income*0.25, ComputeProgressiveTax(income, flat), delta, "income %v", income)
	}
}

func TestComputeProgressiveTaxMonotonic(t *testing.T) {
	schedule := DefaultSchedule()
	tables := map[string][]Bracket{
		"federal": schedule.Federal,
		"state":   schedule.State,
		"city":    schedule.City,
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			previous := 0.0
			for income := 0.0; income <= 2_000_000; income += 7_331 {
				current := ComputeProgressiveTax(income, table)
				require.GreaterOrEqual(t, current, previous, "tax decreased at income %v", income)
				previous = current
			}
		})
	}
}

// Scenario: two federal brackets, no deduction, no state or city tax.
func TestCalculatorFederalWithoutDeduction(t *testing.T) {
	calc := NewCalculator(Schedule{
		Federal: []Bracket{{0, 0.10}, {50_000, 0.20}},
	})

	breakdown := calc.Compute(100_000, 0)

	assert.InDelta(t, 15_000, breakdown.Federal, delta)
	assert.Zero(t, breakdown.State)
	assert.Zero(t, breakdown.City)
}

func TestCalculatorFederalStandardDeduction(t *testing.T) {
	calc := NewCalculator(Schedule{
		StandardDeduction: 10_000,
		Federal:           []Bracket{{0, 0.10}},
	})

	assert.InDelta(t, 1_000, calc.Federal(20_000), delta)
	assert.Zero(t, calc.Federal(8_000), "deduction larger than income floors at zero")
}

func TestCalculatorSocialSecurityWageBase(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())

	assert.InDelta(t, 10_918.20, calc.SocialSecurity(200_000), delta)
	assert.InDelta(t, 6_200.00, calc.SocialSecurity(100_000), delta)

	capped := calc.SocialSecurity(176_100)
	for _, gross := range []float64{176_100, 180_000, 500_000, 10_000_000} {
		assert.InDelta(t, capped, calc.SocialSecurity(gross), delta)
	}
}

func TestCalculatorMedicareUncapped(t *testing.T) {
	calc := NewCalculator(DefaultSchedule())

	assert.InDelta(t, 1_450, calc.Medicare(100_000), delta)
	assert.InDelta(t, 14_500, calc.Medicare(1_000_000), delta)
}

func TestCalculatorComputeUsesTaxableForIncomeTaxes(t *testing.T) {
	calc := NewCalculator(Schedule{
		Federal:        []Bracket{{0, 0.10}},
		State:          []Bracket{{0, 0.05}},
		City:           []Bracket{{0, 0.01}},
		SocialSecurity: FlatRate{Rate: 0.062, WageBase: 176_100},
		Medicare:       FlatRate{Rate: 0.0145},
	})

	b := calc.Compute(100_000, 20_000)

	assert.InDelta(t, 8_000, b.Federal, delta)
	assert.InDelta(t, 4_000, b.State, delta)
	assert.InDelta(t, 800, b.City, delta)
	assert.InDelta(t, 6_200, b.SocialSecurity, delta)
	assert.InDelta(t, 1_450, b.Medicare, delta)
	assert.InDelta(t, 20_450, b.Total(), delta)
}

func TestDefaultScheduleIsValid(t *testing.T) {
	require.NoError(t, DefaultSchedule().Validate())
}

func TestParseSchedule(t *testing.T) {
	doc := []byte(`
name: test
year: 2026
standard_deduction: 1000
federal:
  - {threshold: 0, rate: 0.1}
  - {threshold: 50000, rate: 0.2}
state:
  - {threshold: 0, rate: 0.05}
social_security:
  rate: 0.062
  wage_base: 100000
medicare:
  rate: 0.0145
`)

	s, err := ParseSchedule(doc)
	require.NoError(t, err)
	require.Equal(t, "test", s.Name)
	require.Equal(t, 2026, s.Year)
	require.Len(t, s.Federal, 2)
	require.Equal(t, Bracket{Threshold: 50_000, Rate: 0.2}, s.Federal[1])
	require.Empty(t, s.City)
	require.Equal(t, 100_000.0, s.SocialSecurity.WageBase)
}

func TestParseScheduleRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "descending thresholds", doc: "federal: [{threshold: 100, rate: 0.1}, {threshold: 50, rate: 0.2}]"},
		{name: "duplicate thresholds", doc: "state: [{threshold: 0, rate: 0.1}, {threshold: 0, rate: 0.2}]"},
		{name: "rate of one", doc: "city: [{threshold: 0, rate: 1}]"},
		{name: "negative threshold", doc: "federal: [{threshold: -1, rate: 0.1}]"},
		{name: "negative deduction", doc: "standard_deduction: -5"},
		{name: "negative medicare", doc: "medicare: {rate: -0.01}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchedule([]byte(tt.doc))
			require.Error(t, err)
			require.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
		})
	}
}
