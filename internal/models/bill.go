package models

// LineItem is one purchasable entry on a receipt, with quantity and unit
// price. AssignedParticipants starts empty and is the only mutable part of a
// bill after creation.
type LineItem struct {
	// ID is unique within the owning bill.
	ID int

	// Name is the item description as printed on the receipt.
	Name string

	// UnitPrice is the price per unit.
	UnitPrice float64

	// Quantity is how many units were purchased (>= 1).
	Quantity int

	// AssignedParticipants holds the roster IDs sharing this item.
	AssignedParticipants []int
}

// TotalPrice returns the full price of the line item.
func (li LineItem) TotalPrice() float64 {
	return li.UnitPrice * float64(li.Quantity)
}

// Assigned reports whether the participant is attached to this item.
func (li LineItem) Assigned(participantID int) bool {
	for _, id := range li.AssignedParticipants {
		if id == participantID {
			return true
		}
	}
	return false
}

// Bill represents one receipt to be split. Created once per receipt-processing
// round trip; read-only after creation except for item assignments.
type Bill struct {
	// BillID is a UUID, client-generated when absent from upstream data.
	BillID string

	// MerchantName is the store or business on the receipt.
	MerchantName string

	// Date is the transaction date as reported by the extractor (YYYY-MM-DD).
	Date string

	// Items are the receipt line items, in receipt order.
	Items []LineItem

	// ReceiptTotal is the total printed on the receipt, including tax and fees.
	ReceiptTotal float64

	// CreatedAt is the Unix timestamp when the bill record was created.
	CreatedAt int64
}

// Subtotal returns the sum of all line item prices before tax.
func (b *Bill) Subtotal() float64 {
	var sum float64
	for _, item := range b.Items {
		sum += item.TotalPrice()
	}
	return sum
}

// Item returns the line item with the given ID, or nil if the bill has no
// such item.
func (b *Bill) Item(itemID int) *LineItem {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			return &b.Items[i]
		}
	}
	return nil
}
