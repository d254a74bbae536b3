package service

import (
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/models"
)

// validateItems enforces the item invariants: non-negative unit price,
// positive quantity, positive shares with no duplicate user per item, and
// shares summing to the item quantity exactly.
func validateItems(items []models.Item) error {
	for _, item := range items {
		if item.UnitPriceCents < 0 {
			return errs.Validationf("item %q has negative unit price %d", item.Name, item.UnitPriceCents)
		}
		if !item.Quantity.IsPositive() {
			return errs.Validationf("item %q has non-positive quantity %s", item.Name, item.Quantity)
		}

		seen := make(map[string]bool, len(item.Splits))
		shareSum := decimal.Zero
		for _, split := range item.Splits {
			if !split.ShareQuantity.IsPositive() {
				return errs.Validationf("item %q has non-positive share %s for user %s",
					item.Name, split.ShareQuantity, split.UserID)
			}
			if seen[split.UserID] {
				return errs.Validationf("item %q has duplicate split for user %s", item.Name, split.UserID)
			}
			seen[split.UserID] = true
			shareSum = shareSum.Add(split.ShareQuantity)
		}
		if !shareSum.Equal(item.Quantity) {
			return errs.Validationf("item %q split shares sum to %s, want quantity %s",
				item.Name, shareSum, item.Quantity)
		}
	}
	return nil
}

// validatePayments rejects negative payment amounts. Payments are not
// required to cover the total until finalize.
func validatePayments(payments []models.Payment) error {
	for _, p := range payments {
		if p.AmountPaidCents < 0 {
			return errs.Validationf("payment by user %s has negative amount %d", p.UserID, p.AmountPaidCents)
		}
	}
	return nil
}

// recomputeTotals derives subtotal and total from the document itself,
// discarding whatever the caller sent.
func recomputeTotals(r *models.Receipt) {
	var subtotal int64
	for _, item := range r.Items {
		subtotal += item.LineTotalCents()
	}
	r.SubtotalCents = subtotal
	r.TotalCents = subtotal + r.TaxCents + r.TipCents
}

// paymentSum returns the total paid across all payments.
func paymentSum(payments []models.Payment) int64 {
	var sum int64
	for _, p := range payments {
		sum += p.AmountPaidCents
	}
	return sum
}
