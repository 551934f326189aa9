package split

import (
	"math"
	"testing"

	"github.com/budgetly/budgetly/internal/models"
)

func TestComputeSummary(t *testing.T) {
	roster := []models.Participant{
		{ID: 1, DisplayName: "Alice"},
		{ID: 2, DisplayName: "Bob"},
	}

	tests := []struct {
		name         string
		bill         *models.Bill
		wantErr      bool
		validateFunc func(t *testing.T, shares map[int]*PersonShare)
	}{
		{
			name: "two-person split with proportional tax",
			bill: &models.Bill{
				Items: []models.LineItem{
					{ID: 1, Name: "Pizza", UnitPrice: 20.0, Quantity: 1, AssignedParticipants: []int{1, 2}},
					{ID: 2, Name: "Salad", UnitPrice: 10.0, Quantity: 1, AssignedParticipants: []int{1}},
				},
				ReceiptTotal: 33.0,
			},
			validateFunc: func(t *testing.T, shares map[int]*PersonShare) {
				// Alice: subtotal = 10 + 10 = 20, tax = 20 * (3/30) = 2, total = 22
				// Bob: subtotal = 10, tax = 1, total = 11
				alice := shares[1]
				if math.Abs(alice.Subtotal-20.0) > 0.01 {
					t.Errorf("Alice subtotal = %v, want 20.0", alice.Subtotal)
				}
				if math.Abs(alice.Tax-2.0) > 0.01 {
					t.Errorf("Alice tax = %v, want 2.0", alice.Tax)
				}
				if math.Abs(alice.Total-22.0) > 0.01 {
					t.Errorf("Alice total = %v, want 22.0", alice.Total)
				}
				if len(alice.Items) != 2 {
					t.Errorf("Alice items = %d, want 2", len(alice.Items))
				}

				bob := shares[2]
				if math.Abs(bob.Total-11.0) > 0.01 {
					t.Errorf("Bob total = %v, want 11.0", bob.Total)
				}
			},
		},
		{
			name: "quantity folds into the item total",
			bill: &models.Bill{
				Items: []models.LineItem{
					{ID: 1, Name: "Drinks", UnitPrice: 2.5, Quantity: 4, AssignedParticipants: []int{1, 2}},
				},
				ReceiptTotal: 10.0,
			},
			validateFunc: func(t *testing.T, shares map[int]*PersonShare) {
				for id := 1; id <= 2; id++ {
					if math.Abs(shares[id].Total-5.0) > 0.01 {
						t.Errorf("participant %d total = %v, want 5.0", id, shares[id].Total)
					}
				}
			},
		},
		{
			name: "no items splits the receipt total equally",
			bill: &models.Bill{
				ReceiptTotal: 33.0,
			},
			validateFunc: func(t *testing.T, shares map[int]*PersonShare) {
				for id := 1; id <= 2; id++ {
					if math.Abs(shares[id].Total-16.5) > 0.01 {
						t.Errorf("participant %d total = %v, want 16.5", id, shares[id].Total)
					}
				}
			},
		},
		{
			name: "zero subtotal with items should error",
			bill: &models.Bill{
				Items: []models.LineItem{
					{ID: 1, Name: "Freebie", UnitPrice: 0, Quantity: 1, AssignedParticipants: []int{1}},
				},
				ReceiptTotal: 5.0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := ComputeSummary(tt.bill, roster)
			if (err != nil) != tt.wantErr {
				t.Errorf("ComputeSummary() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestComputeSummaryNoRoster(t *testing.T) {
	if _, err := ComputeSummary(&models.Bill{ReceiptTotal: 10}, nil); err == nil {
		t.Error("expected error for empty roster")
	}
}

func TestSummaryConservesAssignedMoney(t *testing.T) {
	bill := testBill()
	for i := range bill.Items {
		bill.Items[i].AssignedParticipants = []int{1, 2}
	}

	shares, err := ComputeSummary(bill, testRoster())
	if err != nil {
		t.Fatalf("ComputeSummary failed: %v", err)
	}

	var sum float64
	for _, share := range shares {
		sum += share.Total
	}
	if math.Abs(sum-bill.ReceiptTotal) > 0.01 {
		t.Errorf("sum of person totals = %v, want receipt total %v", sum, bill.ReceiptTotal)
	}
}
