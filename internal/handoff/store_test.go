package handoff

import (
	"errors"
	"testing"
	"time"

	"github.com/budgetly/budgetly/internal/receipts"
)

func TestPutTake(t *testing.T) {
	store := NewStore(time.Minute)
	defer store.Close()

	receipt := &receipts.Receipt{MerchantName: "Luigi's", Total: 26.49}
	key := store.Put(receipt)
	if key == "" {
		t.Fatal("Put returned empty key")
	}

	got, err := store.Take(key)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if got.MerchantName != "Luigi's" {
		t.Errorf("merchant = %q", got.MerchantName)
	}

	// Read-once: the entry is cleared by the first Take.
	if _, err := store.Take(key); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Take error = %v, want ErrNotFound", err)
	}
}

func TestTakeMissingKey(t *testing.T) {
	store := NewStore(time.Minute)
	defer store.Close()

	if _, err := store.Take("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Take error = %v, want ErrNotFound", err)
	}
}

func TestPutKeyedWriteOnce(t *testing.T) {
	store := NewStore(time.Minute)
	defer store.Close()

	receipt := &receipts.Receipt{MerchantName: "Cafe"}
	if err := store.PutKeyed("k", receipt); err != nil {
		t.Fatalf("PutKeyed failed: %v", err)
	}
	if err := store.PutKeyed("k", receipt); !errors.Is(err, ErrExists) {
		t.Errorf("second PutKeyed error = %v, want ErrExists", err)
	}
}
