package receipts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProcess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, "bad upload", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "receipt.jpg" {
			t.Errorf("filename = %q, want receipt.jpg", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("content type = %q, want image/jpeg", ct)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"merchant_name": "Whole Foods",
			"total": 42.17,
			"date": "2025-05-03",
			"items": [
				{"name": "Bananas", "price": 1.99, "quantity": 2},
				{"name": "Oat Milk", "price": 4.49}
			],
			"category": "food",
			"description": "Groceries at Whole Foods"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	receipt, err := client.Process(context.Background(), "receipt.jpg", "image/jpeg", []byte("fake-image"))
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if receipt.MerchantName != "Whole Foods" {
		t.Errorf("merchant = %q", receipt.MerchantName)
	}
	if len(receipt.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(receipt.Items))
	}
	if receipt.ExpenseCategory() != "food" {
		t.Errorf("category = %q, want food", receipt.ExpenseCategory())
	}
}

func TestProcessErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "Error processing receipt: unreadable image"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Process(context.Background(), "r.jpg", "image/jpeg", []byte("x")); err == nil {
		t.Fatal("Process succeeded, want error")
	}
}

func TestToBill(t *testing.T) {
	receipt := &Receipt{
		MerchantName: "Luigi's",
		Total:        26.49,
		Date:         "2025-05-03",
		Items: []Item{
			{Name: "Margherita Pizza", Price: 12.99, Quantity: 1},
			{Name: "Soft Drinks", Price: 2.50, Quantity: 2},
			{Name: "Tiramisu", Price: 6.99}, // quantity omitted upstream
		},
		Category: "food",
	}

	bill := receipt.ToBill()
	if bill.BillID == "" {
		t.Error("expected a client-generated bill ID")
	}
	if len(bill.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(bill.Items))
	}
	for i, item := range bill.Items {
		if item.ID != i+1 {
			t.Errorf("item %d has ID %d, want sequential", i, item.ID)
		}
	}
	if bill.Items[2].Quantity != 1 {
		t.Errorf("omitted quantity = %d, want default 1", bill.Items[2].Quantity)
	}
}

func TestExpenseCategoryFallback(t *testing.T) {
	receipt := &Receipt{Category: "cryptocurrency"}
	if got := receipt.ExpenseCategory(); got != "other" {
		t.Errorf("unknown category mapped to %q, want other", got)
	}
}
