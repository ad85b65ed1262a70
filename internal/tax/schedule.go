package tax

import (
	"fmt"
	"os"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"gopkg.in/yaml.v3"
)

type FlatRate struct {
	Rate float64 `json:"rate" yaml:"rate"`
	// WageBase caps the income the rate applies to. Zero means uncapped.
	WageBase float64 `json:"wage_base,omitempty" yaml:"wage_base,omitempty"`
}

// Schedule holds every parameter the calculator needs for one
// jurisdiction and tax year.
type Schedule struct {
	Name              string    `json:"name" yaml:"name"`
	Year              int       `json:"year" yaml:"year"`
	StandardDeduction float64   `json:"standard_deduction" yaml:"standard_deduction"`
	Federal           []Bracket `json:"federal" yaml:"federal"`
	State             []Bracket `json:"state" yaml:"state"`
	City              []Bracket `json:"city" yaml:"city"`
	SocialSecurity    FlatRate  `json:"social_security" yaml:"social_security"`
	Medicare          FlatRate  `json:"medicare" yaml:"medicare"`
}

func (s Schedule) Validate() error {
	if s.StandardDeduction < 0 {
		return appErrors.InvalidInput("standard deduction cannot be negative: %.2f", s.StandardDeduction)
	}
	if err := ValidateBrackets("federal", s.Federal); err != nil {
		return err
	}
	if err := ValidateBrackets("state", s.State); err != nil {
		return err
	}
	if err := ValidateBrackets("city", s.City); err != nil {
		return err
	}
	for name, flat := range map[string]FlatRate{"social security": s.SocialSecurity, "medicare": s.Medicare} {
		if flat.Rate < 0 || flat.Rate >= 1 {
			return appErrors.InvalidInput("%s rate %v outside [0, 1)", name, flat.Rate)
		}
		if flat.WageBase < 0 {
			return appErrors.InvalidInput("%s wage base cannot be negative: %.2f", name, flat.WageBase)
		}
	}
	return nil
}

// LoadSchedule reads a YAML schedule file and validates it.
func LoadSchedule(path string) (Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("failed to read tax schedule file: %w", err)
	}
	return ParseSchedule(data)
}

func ParseSchedule(data []byte) (Schedule, error) {
	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schedule{}, fmt.Errorf("failed to parse tax schedule: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("invalid tax schedule %q: %w", s.Name, err)
	}
	return s, nil
}

// DefaultSchedule is the 2025 single filer schedule for a New York City
// resident.
func DefaultSchedule() Schedule {
	return Schedule{
		Name:              "US-NY-NYC single",
		Year:              2025,
		StandardDeduction: 15_000,
		Federal: []Bracket{
			{0, 0.10},
			{11_925, 0.12},
			{48_475, 0.22},
			{103_350, 0.24},
			{197_300, 0.32},
			{250_525, 0.35},
			{626_350, 0.37},
		},
		State: []Bracket{
			{0, 0.04},
			{8_500, 0.045},
			{11_700, 0.0525},
			{13_900, 0.0585},
			{80_650, 0.0625},
			{215_400, 0.0685},
			{1_077_550, 0.0965},
			{5_000_000, 0.103},
			{25_000_000, 0.109},
		},
		City: []Bracket{
			{0, 0.03078},
			{12_000, 0.03762},
			{25_000, 0.03819},
			{50_000, 0.03876},
		},
		SocialSecurity: FlatRate{Rate: 0.062, WageBase: 176_100},
		Medicare:       FlatRate{Rate: 0.0145},
	}
}
