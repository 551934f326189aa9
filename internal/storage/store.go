// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/budgetly/budgetly/internal/models"
)

// Store defines the persistence operations for Budgetly. The abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Bills. CreateBill populates BillID and CreatedAt when unset.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	// UpdateAssignments rewrites the per-item participant sets of an
	// existing bill. The bill itself stays immutable.
	UpdateAssignments(ctx context.Context, bill *models.Bill) error

	// Transactions derived from split submissions.
	SaveTransactions(ctx context.Context, txs []models.Transaction) error
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)

	// Goals.
	CreateGoal(ctx context.Context, goal *models.Goal) error
	GetGoal(ctx context.Context, id string) (*models.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]models.Goal, error)
	UpdateGoal(ctx context.Context, goal *models.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	// Budgets.
	CreateBudget(ctx context.Context, budget *models.Budget) error
	ListBudgets(ctx context.Context, userID string) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, budget *models.Budget) error
	DeleteBudget(ctx context.Context, id string) error

	// Chat transcripts.
	SaveMessage(ctx context.Context, sessionID, title string, msg models.Message) error
	ListSessions(ctx context.Context) ([]models.SessionSummary, error)
	GetTranscript(ctx context.Context, sessionID string) ([]models.Message, error)

	// Close releases any resources held by the store.
	Close() error
}
