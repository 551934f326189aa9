package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/budgetly/budgetly/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBill() *models.Bill {
	return &models.Bill{
		MerchantName: "Luigi's Pizza",
		Date:         "2025-05-01",
		ReceiptTotal: 23.0,
		Items: []models.LineItem{
			{ID: 1, Name: "Margherita", UnitPrice: 12.99, Quantity: 1},
			{ID: 2, Name: "Soda", UnitPrice: 2.50, Quantity: 2},
		},
	}
}

func TestBillRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := testBill()
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.BillID == "" || bill.CreatedAt == 0 {
		t.Fatal("CreateBill did not populate BillID/CreatedAt")
	}

	got, err := store.GetBill(ctx, bill.BillID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.MerchantName != "Luigi's Pizza" || len(got.Items) != 2 {
		t.Errorf("got bill %+v", got)
	}
	if math.Abs(got.Items[0].UnitPrice-12.99) > 0.001 {
		t.Errorf("item price = %v", got.Items[0].UnitPrice)
	}

	if _, err := store.GetBill(ctx, "missing"); err == nil {
		t.Error("GetBill for missing id succeeded, want error")
	}
}

func TestUpdateAssignments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := testBill()
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	bill.Items[0].AssignedParticipants = []int{1, 2}
	bill.Items[1].AssignedParticipants = []int{2}
	if err := store.UpdateAssignments(ctx, bill); err != nil {
		t.Fatalf("UpdateAssignments failed: %v", err)
	}

	got, err := store.GetBill(ctx, bill.BillID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if len(got.Items[0].AssignedParticipants) != 2 || len(got.Items[1].AssignedParticipants) != 1 {
		t.Errorf("assignments = %v / %v", got.Items[0].AssignedParticipants, got.Items[1].AssignedParticipants)
	}

	// Rewriting replaces, never accumulates.
	bill.Items[0].AssignedParticipants = []int{3}
	bill.Items[1].AssignedParticipants = []int{3}
	if err := store.UpdateAssignments(ctx, bill); err != nil {
		t.Fatalf("second UpdateAssignments failed: %v", err)
	}
	got, _ = store.GetBill(ctx, bill.BillID)
	if len(got.Items[0].AssignedParticipants) != 1 || got.Items[0].AssignedParticipants[0] != 3 {
		t.Errorf("assignments after rewrite = %v", got.Items[0].AssignedParticipants)
	}

	missing := testBill()
	missing.BillID = "missing"
	if err := store.UpdateAssignments(ctx, missing); err == nil {
		t.Error("UpdateAssignments for missing bill succeeded, want error")
	}
}

func TestTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := testBill()
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	txs := []models.Transaction{
		{BillID: bill.BillID, ParticipantID: 1, ItemName: "Margherita", UnitPrice: 12.99, Quantity: 1, Amount: 6.495, MerchantName: "Luigi's Pizza", Category: models.CategoryFood},
		{BillID: bill.BillID, ParticipantID: 2, ItemName: "Margherita", UnitPrice: 12.99, Quantity: 1, Amount: 6.495, MerchantName: "Luigi's Pizza", Category: models.CategoryFood},
		{BillID: bill.BillID, ParticipantID: 2, ItemName: "Soda", UnitPrice: 2.50, Quantity: 2, Amount: 5.0, MerchantName: "Luigi's Pizza", Category: models.CategoryFood},
	}
	if err := store.SaveTransactions(ctx, txs); err != nil {
		t.Fatalf("SaveTransactions failed: %v", err)
	}

	tests := []struct {
		name   string
		filter models.TransactionFilter
		want   int
	}{
		{name: "all for bill", filter: models.TransactionFilter{BillID: bill.BillID}, want: 3},
		{name: "by participant", filter: models.TransactionFilter{ParticipantID: 2}, want: 2},
		{name: "by category", filter: models.TransactionFilter{Category: models.CategoryFood}, want: 3},
		{name: "by min amount", filter: models.TransactionFilter{MinAmount: 6.0}, want: 2},
		{name: "by max amount", filter: models.TransactionFilter{MaxAmount: 5.5}, want: 1},
		{name: "no match", filter: models.TransactionFilter{BillID: "missing"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTransactions failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("transactions = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestGoalsCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	goal := &models.Goal{UserID: "u1", Name: "Emergency Fund", TargetAmount: 5000, Deadline: "2026-12-31"}
	if err := store.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}

	goal.CurrentAmount = 750
	if err := store.UpdateGoal(ctx, goal); err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}

	got, err := store.GetGoal(ctx, goal.ID)
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if got.CurrentAmount != 750 {
		t.Errorf("current amount = %v, want 750", got.CurrentAmount)
	}

	goals, err := store.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("ListGoals failed: %v", err)
	}
	if len(goals) != 1 {
		t.Errorf("goals = %d, want 1", len(goals))
	}
	if other, _ := store.ListGoals(ctx, "someone-else"); len(other) != 0 {
		t.Errorf("goals for other user = %d, want 0", len(other))
	}

	if err := store.DeleteGoal(ctx, goal.ID); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	if err := store.DeleteGoal(ctx, goal.ID); err == nil {
		t.Error("second DeleteGoal succeeded, want error")
	}
}

func TestBudgetsCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	budget := &models.Budget{UserID: "u1", Category: models.CategoryFood, Amount: 400, StartDate: "2025-05-01", EndDate: "2025-05-31"}
	if err := store.CreateBudget(ctx, budget); err != nil {
		t.Fatalf("CreateBudget failed: %v", err)
	}

	budget.Amount = 450
	if err := store.UpdateBudget(ctx, budget); err != nil {
		t.Fatalf("UpdateBudget failed: %v", err)
	}

	budgets, err := store.ListBudgets(ctx, "u1")
	if err != nil {
		t.Fatalf("ListBudgets failed: %v", err)
	}
	if len(budgets) != 1 || budgets[0].Amount != 450 || budgets[0].Category != models.CategoryFood {
		t.Errorf("budgets = %+v", budgets)
	}

	if err := store.DeleteBudget(ctx, budget.ID); err != nil {
		t.Fatalf("DeleteBudget failed: %v", err)
	}
	if err := store.UpdateBudget(ctx, budget); err == nil {
		t.Error("UpdateBudget after delete succeeded, want error")
	}
}

func TestChatTranscripts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	msgs := []models.Message{
		{ID: "1-0001", Text: "hello", VisibleText: "hello", Sender: models.SenderUser, CreatedAt: now},
		{ID: "1-0002", Text: "Hi! How can I help?", VisibleText: "Hi! How can I help?", Sender: models.SenderAssistant, CreatedAt: now.Add(time.Second)},
	}
	for _, m := range msgs {
		if err := store.SaveMessage(ctx, "session-1", "hello", m); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	transcript, err := store.GetTranscript(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetTranscript failed: %v", err)
	}
	if len(transcript) != 2 {
		t.Fatalf("transcript = %d messages, want 2", len(transcript))
	}
	if transcript[0].Sender != models.SenderUser || transcript[1].Sender != models.SenderAssistant {
		t.Errorf("transcript order = %v, %v", transcript[0].Sender, transcript[1].Sender)
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	if sessions[0].Title != "hello" {
		t.Errorf("title = %q", sessions[0].Title)
	}
	if !strings.Contains(sessions[0].PreviewText, "How can I help") {
		t.Errorf("preview = %q, want the latest message", sessions[0].PreviewText)
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.DisplayName != "Alice" {
		t.Errorf("got user %+v", byEmail)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("email = %q", byID.Email)
	}

	if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); err == nil {
		t.Error("GetUserByEmail for missing user succeeded, want error")
	}

	if err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Dup", "hash")); err == nil {
		t.Error("duplicate email CreateUser succeeded, want error")
	}
}
