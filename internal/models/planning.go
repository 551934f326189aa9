package models

// Goal is a savings target the user is working toward.
type Goal struct {
	// ID is the unique identifier for the goal (UUID format).
	ID string

	UserID string

	// Name is the display name (e.g., "Emergency Fund").
	Name string

	TargetAmount  float64
	CurrentAmount float64

	// Deadline is the target date (YYYY-MM-DD).
	Deadline string

	// CreatedAt is the Unix timestamp when the goal was created.
	CreatedAt int64
}

// Budget is a spending limit for one expense category over a date range.
type Budget struct {
	// ID is the unique identifier for the budget (UUID format).
	ID string

	UserID   string
	Category ExpenseCategory

	// Amount is the limit for the period.
	Amount float64

	// Percentage optionally expresses the limit as a share of income.
	Percentage float64

	// StartDate and EndDate bound the budget period (YYYY-MM-DD).
	StartDate string
	EndDate   string

	// CreatedAt is the Unix timestamp when the budget was created.
	CreatedAt int64
}

// Transaction records one participant's share of one bill item. Rows are
// derived from a split submission and feed the history and dashboard views.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	BillID        string
	ParticipantID int

	ItemName  string
	UnitPrice float64
	Quantity  int

	// Amount is what this participant owes for this item (their share, not
	// the item total).
	Amount float64

	MerchantName string
	Category     ExpenseCategory

	// TransactionDate is the bill date (YYYY-MM-DD).
	TransactionDate string

	// CreatedAt is the Unix timestamp when the row was recorded.
	CreatedAt int64
}

// TransactionFilter narrows a transaction listing. Zero values mean "no
// constraint".
type TransactionFilter struct {
	BillID        string
	ParticipantID int
	Category      ExpenseCategory
	MerchantName  string
	MinAmount     float64
	MaxAmount     float64
}
