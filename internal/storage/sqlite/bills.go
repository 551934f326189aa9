package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/budgetly/budgetly/internal/models"
)

// CreateBill persists a new bill with its items and assignments. BillID and
// CreatedAt are generated when unset.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.BillID == "" {
		bill.BillID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, merchant_name, date, receipt_total, created_at) VALUES (?, ?, ?, ?, ?)",
		bill.BillID, bill.MerchantName, bill.Date, bill.ReceiptTotal, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for _, item := range bill.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (bill_id, id, name, unit_price, quantity) VALUES (?, ?, ?, ?, ?)",
			bill.BillID, item.ID, item.Name, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, participantID := range item.AssignedParticipants {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (bill_id, item_id, participant_id) VALUES (?, ?, ?)",
				bill.BillID, item.ID, participantID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID, including all items and their assignments.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, merchant_name, date, receipt_total, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.BillID, &bill.MerchantName, &bill.Date, &bill.ReceiptTotal, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill not found: %s", billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, unit_price, quantity FROM items WHERE bill_id = ? ORDER BY id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.LineItem
		if err := itemRows.Scan(&item.ID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		assignRows, err := s.db.QueryContext(ctx,
			"SELECT participant_id FROM item_assignments WHERE bill_id = ? AND item_id = ? ORDER BY participant_id",
			billID, item.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get item assignments: %w", err)
		}

		for assignRows.Next() {
			var participantID int
			if err := assignRows.Scan(&participantID); err != nil {
				assignRows.Close()
				return nil, fmt.Errorf("failed to scan assignment: %w", err)
			}
			item.AssignedParticipants = append(item.AssignedParticipants, participantID)
		}
		assignRows.Close()
		if err := assignRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate assignments: %w", err)
		}
	}

	return bill, nil
}

// UpdateAssignments rewrites the assignment sets of an existing bill. Items
// and bill fields are left untouched.
func (s *SQLiteStore) UpdateAssignments(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM bills WHERE id = ?", bill.BillID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check bill: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("bill not found: %s", bill.BillID)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM item_assignments WHERE bill_id = ?", bill.BillID)
	if err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}

	for _, item := range bill.Items {
		for _, participantID := range item.AssignedParticipants {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (bill_id, item_id, participant_id) VALUES (?, ?, ?)",
				bill.BillID, item.ID, participantID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
