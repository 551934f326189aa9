package models

// ExpenseCategory classifies an expense for budgeting and reporting.
type ExpenseCategory string

const (
	CategoryFood           ExpenseCategory = "food"
	CategoryTransportation ExpenseCategory = "transportation"
	CategoryHousing        ExpenseCategory = "housing"
	CategoryUtilities      ExpenseCategory = "utilities"
	CategoryEntertainment  ExpenseCategory = "entertainment"
	CategoryHealthcare     ExpenseCategory = "healthcare"
	CategoryShopping       ExpenseCategory = "shopping"
	CategoryEducation      ExpenseCategory = "education"
	CategoryPersonal       ExpenseCategory = "personal"
	CategorySavings        ExpenseCategory = "savings"
	CategoryInvestments    ExpenseCategory = "investments"
	CategoryOther          ExpenseCategory = "other"
)

// ValidCategory reports whether c is one of the known expense categories.
func ValidCategory(c ExpenseCategory) bool {
	switch c {
	case CategoryFood, CategoryTransportation, CategoryHousing,
		CategoryUtilities, CategoryEntertainment, CategoryHealthcare,
		CategoryShopping, CategoryEducation, CategoryPersonal,
		CategorySavings, CategoryInvestments, CategoryOther:
		return true
	}
	return false
}
