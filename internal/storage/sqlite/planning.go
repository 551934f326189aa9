package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/budgetly/budgetly/internal/models"
)

// CreateGoal persists a new savings goal, generating ID and CreatedAt when unset.
func (s *SQLiteStore) CreateGoal(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	if goal.CreatedAt == 0 {
		goal.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Deadline, goal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// GetGoal retrieves a goal by ID.
func (s *SQLiteStore) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	goal := &models.Goal{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, target_amount, current_amount, deadline, created_at FROM goals WHERE id = ?",
		id,
	).Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount, &goal.CurrentAmount, &goal.Deadline, &goal.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("goal not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// ListGoals returns all goals belonging to a user.
func (s *SQLiteStore) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, target_amount, current_amount, deadline, created_at FROM goals WHERE user_id = ? ORDER BY created_at",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var out []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return out, nil
}

// UpdateGoal updates an existing goal.
func (s *SQLiteStore) UpdateGoal(ctx context.Context, goal *models.Goal) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, deadline = ? WHERE id = ?",
		goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Deadline, goal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return requireRow(res, "goal", goal.ID)
}

// DeleteGoal deletes a goal by ID.
func (s *SQLiteStore) DeleteGoal(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireRow(res, "goal", id)
}

// CreateBudget persists a new budget, generating ID and CreatedAt when unset.
func (s *SQLiteStore) CreateBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	if budget.CreatedAt == 0 {
		budget.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO budgets (id, user_id, category, amount, percentage, start_date, end_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		budget.ID, budget.UserID, string(budget.Category), budget.Amount, budget.Percentage,
		budget.StartDate, budget.EndDate, budget.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}

// ListBudgets returns all budgets belonging to a user.
func (s *SQLiteStore) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, category, amount, percentage, start_date, end_date, created_at FROM budgets WHERE user_id = ? ORDER BY created_at",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var out []models.Budget
	for rows.Next() {
		var b models.Budget
		var category string
		if err := rows.Scan(&b.ID, &b.UserID, &category, &b.Amount, &b.Percentage, &b.StartDate, &b.EndDate, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.Category = models.ExpenseCategory(category)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}
	return out, nil
}

// UpdateBudget updates an existing budget.
func (s *SQLiteStore) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE budgets SET category = ?, amount = ?, percentage = ?, start_date = ?, end_date = ? WHERE id = ?",
		string(budget.Category), budget.Amount, budget.Percentage, budget.StartDate, budget.EndDate, budget.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return requireRow(res, "budget", budget.ID)
}

// DeleteBudget deletes a budget by ID.
func (s *SQLiteStore) DeleteBudget(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireRow(res, "budget", id)
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}
