// Package receipts talks to the external receipt-extraction service and
// converts its output into bills ready for splitting.
package receipts

import (
	"github.com/google/uuid"

	"github.com/budgetly/budgetly/internal/models"
)

// Item is one extracted receipt line.
type Item struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Receipt is the structured result of processing one receipt image.
type Receipt struct {
	MerchantName string  `json:"merchant_name"`
	Total        float64 `json:"total"`
	Date         string  `json:"date"`
	Items        []Item  `json:"items"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
}

// ToBill converts the extracted receipt into a Bill with sequential item IDs
// and a client-generated bill ID. Extractors occasionally omit quantity;
// it defaults to 1.
func (r *Receipt) ToBill() *models.Bill {
	bill := &models.Bill{
		BillID:       uuid.New().String(),
		MerchantName: r.MerchantName,
		Date:         r.Date,
		ReceiptTotal: r.Total,
		Items:        make([]models.LineItem, 0, len(r.Items)),
	}
	for i, item := range r.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		bill.Items = append(bill.Items, models.LineItem{
			ID:        i + 1,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  qty,
		})
	}
	return bill
}

// ExpenseCategory maps the extractor's category string onto the known enum,
// falling back to "other" for anything unrecognized.
func (r *Receipt) ExpenseCategory() models.ExpenseCategory {
	c := models.ExpenseCategory(r.Category)
	if !models.ValidCategory(c) {
		return models.CategoryOther
	}
	return c
}
