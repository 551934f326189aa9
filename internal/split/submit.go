package split

import (
	"context"
	"fmt"
	"log/slog"
)

// SubmissionItem maps one line item to the participants sharing it.
type SubmissionItem struct {
	ItemID   int     `json:"item_id"`
	ItemName string  `json:"item_name"`
	Price    float64 `json:"price"`
	UserIDs  []int   `json:"user_ids"`
}

// Submission is the payload handed to the split-submission collaborator.
type Submission struct {
	BillID       string           `json:"bill_id"`
	MerchantName string           `json:"merchant_name"`
	SplitItems   []SubmissionItem `json:"split_items"`
}

// Submitter delivers a finished split. Implementations post the payload to
// the submission endpoint or persist it locally.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// Submit builds the submission payload and hands it to the given Submitter.
// The call is rejected before any I/O when an item is still unassigned, and
// while a previous submission is in flight. On transport failure the
// allocator state is unchanged and the error is returned to the caller.
func (a *Allocator) Submit(ctx context.Context, submitter Submitter) error {
	a.mu.Lock()
	if a.submitting {
		a.mu.Unlock()
		return ErrSubmitInFlight
	}
	if pending := a.pendingLocked(); pending != nil {
		a.mu.Unlock()
		return fmt.Errorf("%w: items %v", ErrIncompleteAssignment, pending)
	}

	sub := Submission{
		BillID:       a.bill.BillID,
		MerchantName: a.bill.MerchantName,
		SplitItems:   make([]SubmissionItem, 0, len(a.bill.Items)),
	}
	for _, item := range a.bill.Items {
		userIDs := make([]int, len(item.AssignedParticipants))
		copy(userIDs, item.AssignedParticipants)
		sub.SplitItems = append(sub.SplitItems, SubmissionItem{
			ItemID:   item.ID,
			ItemName: item.Name,
			Price:    item.TotalPrice(),
			UserIDs:  userIDs,
		})
	}
	a.submitting = true
	a.mu.Unlock()

	err := submitter.Submit(ctx, sub)

	a.mu.Lock()
	a.submitting = false
	a.mu.Unlock()

	if err != nil {
		slog.Error("split submission failed", "bill_id", sub.BillID, "error", err)
		return fmt.Errorf("submit split: %w", err)
	}

	slog.Info("split submitted",
		"bill_id", sub.BillID,
		"merchant", sub.MerchantName,
		"items", len(sub.SplitItems),
	)
	return nil
}
