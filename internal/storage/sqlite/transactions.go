package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/budgetly/budgetly/internal/models"
)

// SaveTransactions persists the rows derived from one split submission in a
// single transaction.
func (s *SQLiteStore) SaveTransactions(ctx context.Context, txs []models.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	for i := range txs {
		t := &txs[i]
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.CreatedAt == 0 {
			t.CreatedAt = time.Now().Unix()
		}

		_, err = dbTx.ExecContext(ctx,
			`INSERT INTO transactions
			 (id, bill_id, participant_id, item_name, unit_price, quantity, amount, merchant_name, category, transaction_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.BillID, t.ParticipantID, t.ItemName, t.UnitPrice, t.Quantity,
			t.Amount, t.MerchantName, string(t.Category), t.TransactionDate, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListTransactions returns transactions matching the filter, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT id, bill_id, participant_id, item_name, unit_price, quantity, amount, merchant_name, category, transaction_date, created_at
	          FROM transactions`
	var conds []string
	var args []any

	if filter.BillID != "" {
		conds = append(conds, "bill_id = ?")
		args = append(args, filter.BillID)
	}
	if filter.ParticipantID != 0 {
		conds = append(conds, "participant_id = ?")
		args = append(args, filter.ParticipantID)
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.MerchantName != "" {
		conds = append(conds, "merchant_name = ?")
		args = append(args, filter.MerchantName)
	}
	if filter.MinAmount > 0 {
		conds = append(conds, "amount >= ?")
		args = append(args, filter.MinAmount)
	}
	if filter.MaxAmount > 0 {
		conds = append(conds, "amount <= ?")
		args = append(args, filter.MaxAmount)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var category string
		if err := rows.Scan(&t.ID, &t.BillID, &t.ParticipantID, &t.ItemName, &t.UnitPrice,
			&t.Quantity, &t.Amount, &t.MerchantName, &category, &t.TransactionDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Category = models.ExpenseCategory(category)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return out, nil
}
