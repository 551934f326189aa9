package split

import (
	"context"
	"fmt"

	"github.com/budgetly/budgetly/internal/models"
	"github.com/budgetly/budgetly/internal/storage"
)

// StoreSubmitter persists a finished split locally: the assignment sets on
// the bill, plus one transaction row per (item, assignee) pair so the
// history and dashboard views can aggregate per-participant spending.
type StoreSubmitter struct {
	store    storage.Store
	alloc    *Allocator
	category models.ExpenseCategory
}

// NewStoreSubmitter creates a submitter that records the allocator's split
// under the given expense category.
func NewStoreSubmitter(store storage.Store, alloc *Allocator, category models.ExpenseCategory) *StoreSubmitter {
	if !models.ValidCategory(category) {
		category = models.CategoryOther
	}
	return &StoreSubmitter{store: store, alloc: alloc, category: category}
}

// Submit writes the assignments and derived transactions, reading the bill
// through a snapshot so assignment updates cannot race the writes. The two
// writes are sequential; a failure in either leaves the error with the caller
// and the in-memory allocator untouched.
func (s *StoreSubmitter) Submit(ctx context.Context, sub Submission) error {
	bill, _ := s.alloc.Snapshot()

	if err := s.store.UpdateAssignments(ctx, &bill); err != nil {
		return fmt.Errorf("persist assignments: %w", err)
	}

	var txs []models.Transaction
	for _, si := range sub.SplitItems {
		item := bill.Item(si.ItemID)
		if item == nil {
			return fmt.Errorf("submission references unknown item %d", si.ItemID)
		}
		share := si.Price / float64(len(si.UserIDs))
		for _, userID := range si.UserIDs {
			txs = append(txs, models.Transaction{
				BillID:          sub.BillID,
				ParticipantID:   userID,
				ItemName:        si.ItemName,
				UnitPrice:       item.UnitPrice,
				Quantity:        item.Quantity,
				Amount:          share,
				MerchantName:    sub.MerchantName,
				Category:        s.category,
				TransactionDate: bill.Date,
			})
		}
	}

	if err := s.store.SaveTransactions(ctx, txs); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}
