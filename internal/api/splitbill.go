package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/budgetly/budgetly/internal/handoff"
	"github.com/budgetly/budgetly/internal/models"
	"github.com/budgetly/budgetly/internal/split"
)

// splitSession pairs a live allocator with the expense category the receipt
// was classified under, so submission can tag the derived transactions.
type splitSession struct {
	alloc    *split.Allocator
	category models.ExpenseCategory
}

// splitManager tracks open allocators by hand-off key. The hand-off store
// clears an entry on first read; the allocator lives here afterwards so the
// split page can keep working on it.
type splitManager struct {
	mu   sync.Mutex
	open map[string]*splitSession
}

func newSplitManager() *splitManager {
	return &splitManager{open: make(map[string]*splitSession)}
}

func (m *splitManager) get(key string) (*splitSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.open[key]
	return session, ok
}

func (m *splitManager) put(key string, session *splitSession) {
	m.mu.Lock()
	m.open[key] = session
	m.mu.Unlock()
}

func (m *splitManager) remove(key string) {
	m.mu.Lock()
	delete(m.open, key)
	m.mu.Unlock()
}

type itemPayload struct {
	ID                   int     `json:"id"`
	Name                 string  `json:"name"`
	UnitPrice            float64 `json:"unit_price"`
	Quantity             int     `json:"quantity"`
	TotalPrice           float64 `json:"total_price"`
	AssignedParticipants []int   `json:"assigned_participants"`
	PerAssigneeShare     float64 `json:"per_assignee_share"`
}

type participantPayload struct {
	ID          int     `json:"id"`
	DisplayName string  `json:"display_name"`
	Initials    string  `json:"initials"`
	ColorTag    string  `json:"color_tag"`
	Total       float64 `json:"total"`
}

type splitStatePayload struct {
	Key          string               `json:"key"`
	BillID       string               `json:"bill_id"`
	MerchantName string               `json:"merchant_name"`
	Date         string               `json:"date"`
	ReceiptTotal float64              `json:"receipt_total"`
	Subtotal     float64              `json:"subtotal"`
	Items        []itemPayload        `json:"items"`
	Participants []participantPayload `json:"participants"`
	CanSubmit    bool                 `json:"can_submit"`
	PendingItems []int                `json:"pending_items"`
}

func (s *Server) splitState(key string, session *splitSession) splitStatePayload {
	alloc := session.alloc
	// Render from a snapshot: assignment updates keep mutating the live
	// bill under the allocator's mutex.
	bill, pending := alloc.Snapshot()

	items := make([]itemPayload, 0, len(bill.Items))
	for _, item := range bill.Items {
		items = append(items, itemPayload{
			ID:                   item.ID,
			Name:                 item.Name,
			UnitPrice:            item.UnitPrice,
			Quantity:             item.Quantity,
			TotalPrice:           item.TotalPrice(),
			AssignedParticipants: item.AssignedParticipants,
			PerAssigneeShare:     split.PerAssigneeShare(item),
		})
	}

	roster := alloc.Roster()
	participants := make([]participantPayload, 0, len(roster))
	for _, p := range roster {
		participants = append(participants, participantPayload{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Initials:    p.Initials,
			ColorTag:    p.ColorTag,
			Total:       split.TotalForParticipant(bill.Items, p.ID),
		})
	}

	return splitStatePayload{
		Key:          key,
		BillID:       bill.BillID,
		MerchantName: bill.MerchantName,
		Date:         bill.Date,
		ReceiptTotal: bill.ReceiptTotal,
		Subtotal:     bill.Subtotal(),
		Items:        items,
		Participants: participants,
		CanSubmit:    len(pending) == 0,
		PendingItems: pending,
	}
}

// openSplit consumes the hand-off entry under the key and opens an allocator
// for it. Subsequent GETs return the live allocator state; a key that never
// carried a receipt is the explicit "no data" case.
func (s *Server) openSplit(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if session, ok := s.splits.get(key); ok {
		writeJSON(w, http.StatusOK, s.splitState(key, session))
		return
	}

	receipt, err := s.deps.Handoff.Take(key)
	if err != nil {
		if errors.Is(err, handoff.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no receipt data for this key")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not open split")
		return
	}

	bill := receipt.ToBill()
	if err := s.deps.Store.CreateBill(r.Context(), bill); err != nil {
		// The split can proceed in memory; submission will surface
		// persistence problems if they persist.
		slog.Warn("bill persistence failed", "bill_id", bill.BillID, "error", err)
	}

	var opts []split.Option
	if s.cfg.StrictItems {
		opts = append(opts, split.StrictItems())
	}
	session := &splitSession{
		alloc:    split.NewAllocator(bill, models.DefaultRoster(), opts...),
		category: receipt.ExpenseCategory(),
	}
	s.splits.put(key, session)

	slog.Info("split opened", "key", key, "bill_id", bill.BillID, "items", len(bill.Items))
	writeJSON(w, http.StatusOK, s.splitState(key, session))
}

// splitItem toggles one participant on one line item and returns the
// refreshed allocator state.
func (s *Server) splitItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key           string `json:"key"`
		ItemID        int    `json:"item_id"`
		ParticipantID int    `json:"participant_id"`
		Assigned      bool   `json:"assigned"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, ok := s.splits.get(req.Key)
	if !ok {
		writeError(w, http.StatusNotFound, "no open split for this key")
		return
	}

	var err error
	if req.Assigned {
		err = session.alloc.AddParticipant(req.ItemID, req.ParticipantID)
	} else {
		err = session.alloc.RemoveParticipant(req.ItemID, req.ParticipantID)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.splitState(req.Key, session))
}

// submitSplit finalizes the split. Incomplete assignment and a submission
// already in flight are client-visible guard conditions, not server faults.
func (s *Server) submitSplit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key      string `json:"key"`
		Category string `json:"category"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, ok := s.splits.get(req.Key)
	if !ok {
		writeError(w, http.StatusNotFound, "no open split for this key")
		return
	}

	category := session.category
	if req.Category != "" {
		category = models.ExpenseCategory(req.Category)
		if !models.ValidCategory(category) {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
	}

	submitter := s.deps.Submitter
	if submitter == nil {
		submitter = split.NewStoreSubmitter(s.deps.Store, session.alloc, category)
	}

	err := session.alloc.Submit(r.Context(), submitter)
	switch {
	case errors.Is(err, split.ErrIncompleteAssignment):
		s.countSubmission("incomplete")
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":         "every item needs at least one participant",
			"pending_items": session.alloc.PendingItems(),
		})
		return
	case errors.Is(err, split.ErrSubmitInFlight):
		s.countSubmission("in_flight")
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.countSubmission("failed")
		writeError(w, http.StatusBadGateway, "submission failed")
		return
	}

	s.countSubmission("ok")
	s.splits.remove(req.Key)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "submitted",
		"bill_id": session.alloc.Bill().BillID,
	})
}

func (s *Server) countSubmission(outcome string) {
	if s.deps.Metrics == nil {
		return
	}
	s.deps.Metrics.Submissions.WithLabelValues(outcome).Inc()
}
