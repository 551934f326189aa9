// Package split implements the bill-split allocator: assigning roster
// participants to the line items of one bill and deriving per-item and
// per-participant monetary shares.
package split

import (
	"errors"
	"sync"

	"github.com/budgetly/budgetly/internal/models"
)

var (
	// ErrUnknownItem is returned for assignments against an item ID that does
	// not exist on the bill, when the allocator is in strict mode.
	ErrUnknownItem = errors.New("unknown item id")

	// ErrUnknownParticipant is returned when a participant ID is not part of
	// the session roster.
	ErrUnknownParticipant = errors.New("participant not in roster")

	// ErrIncompleteAssignment is returned by Submit when at least one item
	// has no assigned participants.
	ErrIncompleteAssignment = errors.New("every item needs at least one participant")

	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not finished.
	ErrSubmitInFlight = errors.New("submission already in flight")
)

// Allocator owns the assignment state for one bill. The bill itself is
// read-only; only the per-item participant sets change.
//
// A mutex guards the state because submissions run on request goroutines
// while assignment updates may arrive concurrently.
type Allocator struct {
	mu         sync.Mutex
	bill       *models.Bill
	roster     map[int]models.Participant
	strict     bool
	submitting bool
}

// Option configures an Allocator.
type Option func(*Allocator)

// StrictItems makes AddParticipant and RemoveParticipant fail loudly on an
// unknown item ID instead of silently ignoring it.
func StrictItems() Option {
	return func(a *Allocator) { a.strict = true }
}

// NewAllocator creates an allocator for the given bill and participant
// roster. The default policy for unknown item IDs is a silent no-op.
func NewAllocator(bill *models.Bill, roster []models.Participant, opts ...Option) *Allocator {
	byID := make(map[int]models.Participant, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}
	a := &Allocator{bill: bill, roster: byID}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bill returns the bill owned by this allocator.
func (a *Allocator) Bill() *models.Bill {
	return a.bill
}

// Roster returns the fixed participant roster, in ID order is not guaranteed.
func (a *Allocator) Roster() []models.Participant {
	out := make([]models.Participant, 0, len(a.roster))
	for _, p := range a.roster {
		out = append(out, p)
	}
	return out
}

// AddParticipant attaches a roster participant to a line item. Adding a
// participant that is already assigned is a no-op, so the operation is
// idempotent. Unknown participants are always rejected; unknown items are
// ignored unless strict mode is on.
func (a *Allocator) AddParticipant(itemID, participantID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.roster[participantID]; !ok {
		return ErrUnknownParticipant
	}

	item := a.bill.Item(itemID)
	if item == nil {
		if a.strict {
			return ErrUnknownItem
		}
		return nil
	}

	if item.Assigned(participantID) {
		return nil
	}
	item.AssignedParticipants = append(item.AssignedParticipants, participantID)
	return nil
}

// RemoveParticipant detaches a participant from a line item. Removing an
// absent participant is a no-op.
func (a *Allocator) RemoveParticipant(itemID, participantID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	item := a.bill.Item(itemID)
	if item == nil {
		if a.strict {
			return ErrUnknownItem
		}
		return nil
	}

	for i, id := range item.AssignedParticipants {
		if id == participantID {
			item.AssignedParticipants = append(
				item.AssignedParticipants[:i], item.AssignedParticipants[i+1:]...)
			return nil
		}
	}
	return nil
}

// TotalForParticipant sums the participant's per-assignee share over every
// item they are assigned to. Recomputed on every call; the data sets are
// small enough that caching would not pay for itself.
func (a *Allocator) TotalForParticipant(participantID int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return TotalForParticipant(a.bill.Items, participantID)
}

// Snapshot returns a deep copy of the bill with its current assignment
// sets, plus the IDs of items still unassigned. Readers render state from
// the copy; the live bill is only ever touched under the allocator's mutex.
func (a *Allocator) Snapshot() (models.Bill, []int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := *a.bill
	snap.Items = make([]models.LineItem, len(a.bill.Items))
	for i, item := range a.bill.Items {
		item.AssignedParticipants = append([]int(nil), item.AssignedParticipants...)
		snap.Items[i] = item
	}
	return snap, a.pendingLocked()
}

// CanSubmit reports whether every line item has at least one assigned
// participant.
func (a *Allocator) CanSubmit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingLocked() == nil
}

// PendingItems returns the IDs of items still flagged "needs assignment".
func (a *Allocator) PendingItems() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingLocked()
}

func (a *Allocator) pendingLocked() []int {
	var pending []int
	for _, item := range a.bill.Items {
		if len(item.AssignedParticipants) == 0 {
			pending = append(pending, item.ID)
		}
	}
	return pending
}
