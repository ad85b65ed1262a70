package budget

import "strings"

type TransactionCategory string

const (
	CategoryFood           TransactionCategory = "Food & Dining"
	CategoryShopping       TransactionCategory = "Shopping"
	CategoryTransportation TransactionCategory = "Transportation"
	CategoryEntertainment  TransactionCategory = "Entertainment"
	CategoryUtilities      TransactionCategory = "Utilities"
	CategoryHealthcare     TransactionCategory = "Healthcare"
	CategoryTravel         TransactionCategory = "Travel"
	CategoryPersonal       TransactionCategory = "Personal"
	CategoryIncome         TransactionCategory = "Income"
	CategoryOther          TransactionCategory = "Other"
)

// CategorizeFunc maps a transaction's raw labels to a closed category.
type CategorizeFunc func(labels []string) TransactionCategory

type CategoryRule struct {
	Category TransactionCategory
	Keywords []string
}

// CategoryRules are tried in order; the first rule with a keyword
// contained in the lower-cased first label wins.
type CategoryRules []CategoryRule

var DefaultCategoryRules = CategoryRules{
	{Category: CategoryFood, Keywords: []string{"food", "restaurant"}},
	{Category: CategoryShopping, Keywords: []string{"shop", "retail"}},
	{Category: CategoryTransportation, Keywords: []string{"transport", "gas"}},
	{Category: CategoryEntertainment, Keywords: []string{"entertainment", "recreation"}},
	{Category: CategoryUtilities, Keywords: []string{"utilities", "telecom"}},
	{Category: CategoryHealthcare, Keywords: []string{"healthcare", "medical"}},
	{Category: CategoryTravel, Keywords: []string{"travel"}},
	{Category: CategoryIncome, Keywords: []string{"income", "payment"}},
}

func (rules CategoryRules) Categorize(labels []string) TransactionCategory {
	if len(labels) == 0 {
		return CategoryOther
	}
	primary := strings.ToLower(labels[0])
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(primary, strings.ToLower(keyword)) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}

// Categorize applies DefaultCategoryRules.
func Categorize(labels []string) TransactionCategory {
	return DefaultCategoryRules.Categorize(labels)
}

func orDefault(categorize CategorizeFunc) CategorizeFunc {
	if categorize == nil {
		return Categorize
	}
	return categorize
}
