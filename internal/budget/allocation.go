package budget

import (
	"fmt"
	"math"
	"strings"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AllocationTolerance = 0.01
	FullAllocation      = 100.0
)

func NewBudgetAllocation(categories ...BudgetCategory) BudgetAllocation {
	return BudgetAllocation{
		Categories:        categories,
		EmergencyBufferID: uuid.New().String(),
	}
}

func validatePercentage(percentage float64) error {
	if math.IsNaN(percentage) || percentage < 0 || percentage > FullAllocation {
		return appErrors.InvalidInput("percentage must be between 0 and 100, got: %v", percentage)
	}
	return nil
}

// AddCategory returns a copy of the allocation with a new category appended.
func (a BudgetAllocation) AddCategory(name string, percentage float64, meta CategoryMeta) (BudgetAllocation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return a, appErrors.InvalidInput("category name is empty")
	}
	if len(name) > MAX_CATEGORY_NAME_LENGTH {
		return a, appErrors.InvalidInput("category name is too long, the limit is: %d", MAX_CATEGORY_NAME_LENGTH)
	}
	if err := validatePercentage(percentage); err != nil {
		return a, err
	}

	updated := a.clone()
	updated.Categories = append(updated.Categories, BudgetCategory{
		ID:         uuid.New().String(),
		Name:       name,
		Percentage: percentage,
		Icon:       meta.Icon,
		Color:      meta.Color,
	})
	return updated, nil
}

// UpdateCategoryPercentage replaces one share in place. Other categories
// are not normalized.
func (a BudgetAllocation) UpdateCategoryPercentage(id string, percentage float64) (BudgetAllocation, error) {
	if err := validatePercentage(percentage); err != nil {
		return a, err
	}
	idx := a.indexOf(id)
	if idx < 0 {
		return a, appErrors.NotFound("category not found: %s", id)
	}

	updated := a.clone()
	updated.Categories[idx].Percentage = percentage
	return updated, nil
}

func (a BudgetAllocation) RemoveCategory(id string) (BudgetAllocation, error) {
	idx := a.indexOf(id)
	if idx < 0 {
		return a, appErrors.NotFound("category not found: %s", id)
	}

	updated := a.clone()
	updated.Categories = append(updated.Categories[:idx], updated.Categories[idx+1:]...)
	return updated, nil
}

func (a BudgetAllocation) TotalPercentage() float64 {
	var total float64
	for _, c := range a.Categories {
		total += c.Percentage
	}
	return total
}

// EmergencyBufferPercentage is the unassigned share of take-home pay.
func (a BudgetAllocation) EmergencyBufferPercentage() float64 {
	return math.Max(0, FullAllocation-a.TotalPercentage())
}

func (a BudgetAllocation) EmergencyBufferAmount(monthlyTakeHome float64) float64 {
	return monthlyTakeHome * (a.EmergencyBufferPercentage() / 100)
}

// IsValid reports whether the categories account for all of take-home
// pay. Most callers want IsOverAllocated instead.
func (a BudgetAllocation) IsValid() bool {
	return math.Abs(a.TotalPercentage()-FullAllocation) < AllocationTolerance
}

func (a BudgetAllocation) IsOverAllocated() bool {
	return a.TotalPercentage() > FullAllocation+AllocationTolerance
}

// ValidationMessage is empty unless the allocation is over 100%.
func (a BudgetAllocation) ValidationMessage() string {
	if !a.IsOverAllocated() {
		return ""
	}
	over := decimal.NewFromFloat(a.TotalPercentage() - FullAllocation)
	return fmt.Sprintf("Total exceeds 100%% by %s%%", over.StringFixed(1))
}

func (a BudgetAllocation) CategoryByID(id string) (BudgetCategory, bool) {
	idx := a.indexOf(id)
	if idx < 0 {
		return BudgetCategory{}, false
	}
	return a.Categories[idx], true
}

func (a BudgetAllocation) indexOf(id string) int {
	for i, c := range a.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (a BudgetAllocation) clone() BudgetAllocation {
	categories := make([]BudgetCategory, len(a.Categories))
	copy(categories, a.Categories)
	if a.EmergencyBufferID == "" {
		a.EmergencyBufferID = uuid.New().String()
	}
	return BudgetAllocation{
		Categories:        categories,
		EmergencyBufferID: a.EmergencyBufferID,
	}
}

func (c BudgetCategory) DollarAmount(monthlyTakeHome float64) float64 {
	return monthlyTakeHome * (c.Percentage / 100)
}

// SpendingRatio is spent/budgeted; it may exceed 1.
func (c BudgetCategory) SpendingRatio(monthlyTakeHome float64) float64 {
	budgeted := c.DollarAmount(monthlyTakeHome)
	if budgeted <= 0 {
		return 0
	}
	return c.CurrentMonthSpent / budgeted
}

func (c BudgetCategory) MonthlyRemaining(monthlyTakeHome float64) float64 {
	return math.Max(0, c.DollarAmount(monthlyTakeHome)-c.CurrentMonthSpent)
}

// DefaultCategories is the starter allocation offered to new users.
func DefaultCategories() []CategoryRequest {
	return []CategoryRequest{
		{Name: string(CategoryFood), Percentage: 15, Icon: "fork.knife", Color: "blue"},
		{Name: string(CategoryShopping), Percentage: 10, Icon: "bag.fill", Color: "blue"},
		{Name: string(CategoryTransportation), Percentage: 10, Icon: "car.fill", Color: "blue"},
		{Name: string(CategoryEntertainment), Percentage: 5, Icon: "tv.fill", Color: "blue"},
		{Name: string(CategoryUtilities), Percentage: 10, Icon: "house.fill", Color: "blue"},
		{Name: string(CategoryHealthcare), Percentage: 5, Icon: "cross.case.fill", Color: "blue"},
		{Name: "Savings", Percentage: 20, Icon: "dollarsign.circle.fill", Color: "blue"},
	}
}
