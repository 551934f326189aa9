package split

import (
	"fmt"

	"github.com/budgetly/budgetly/internal/models"
)

// PerAssigneeShare returns one assignee's share of a line item: the item
// total divided by the number of assigned participants. An unassigned item
// contributes 0; it is flagged "needs assignment" rather than treated as an
// error. Rounding is a display concern and is not applied here.
func PerAssigneeShare(item models.LineItem) float64 {
	if len(item.AssignedParticipants) == 0 {
		return 0
	}
	return item.TotalPrice() / float64(len(item.AssignedParticipants))
}

// TotalForParticipant sums PerAssigneeShare over every item the participant
// is assigned to.
func TotalForParticipant(items []models.LineItem, participantID int) float64 {
	var total float64
	for _, item := range items {
		if item.Assigned(participantID) {
			total += PerAssigneeShare(item)
		}
	}
	return total
}

// BillTotal returns the sum of all line item prices.
func BillTotal(items []models.LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.TotalPrice()
	}
	return total
}

// ShareItem is one item's contribution to a person's share.
type ShareItem struct {
	Name   string
	Amount float64
}

// PersonShare is one participant's calculated share of a bill, with tax and
// fees distributed proportionally to their item subtotal.
type PersonShare struct {
	Subtotal float64
	Tax      float64
	Total    float64
	Items    []ShareItem
}

// ComputeSummary calculates every participant's share of the bill. Tax (the
// difference between the receipt total and the item subtotal) is distributed
// proportionally: person_total = person_subtotal × (1 + tax/subtotal).
//
// When the bill has no items, the receipt total is split equally among the
// roster instead.
func ComputeSummary(bill *models.Bill, roster []models.Participant) (map[int]*PersonShare, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	subtotal := bill.Subtotal()
	shares := make(map[int]*PersonShare, len(roster))
	for _, p := range roster {
		shares[p.ID] = &PersonShare{}
	}

	if len(bill.Items) == 0 {
		n := float64(len(roster))
		for _, share := range shares {
			share.Subtotal = subtotal / n
			share.Total = bill.ReceiptTotal / n
			share.Tax = share.Total - share.Subtotal
		}
		return shares, nil
	}

	if subtotal == 0 {
		return nil, fmt.Errorf("subtotal cannot be zero")
	}

	for _, item := range bill.Items {
		if len(item.AssignedParticipants) == 0 {
			continue
		}
		perPerson := PerAssigneeShare(item)
		for _, id := range item.AssignedParticipants {
			share, ok := shares[id]
			if !ok {
				continue
			}
			share.Subtotal += perPerson
			share.Items = append(share.Items, ShareItem{Name: item.Name, Amount: perPerson})
		}
	}

	tax := bill.ReceiptTotal - subtotal
	for _, share := range shares {
		share.Tax = share.Subtotal * (tax / subtotal)
		share.Total = share.Subtotal + share.Tax
	}

	return shares, nil
}
