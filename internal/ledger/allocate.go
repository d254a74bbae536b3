// Package ledger turns a finalized receipt into balanced ledger entries.
//
// The pipeline is Allocate -> NetPositions -> Match. Every step is a pure
// function over integer cents so that rerunning it on the same receipt
// produces byte-identical results.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/money"
)

// Allocation is the per-user cost breakdown of a receipt.
//
// Each component sums exactly to its receipt-level counterpart: item shares
// to the subtotal, tax shares to the tax, tip shares to the tip.
type Allocation struct {
	ItemOwedCents  map[string]int64
	TaxShareCents  map[string]int64
	TipShareCents  map[string]int64
	TotalOwedCents map[string]int64
}

// Allocate computes what every participant owes for the receipt.
//
// Item costs are split by share quantity with per-item rounding, tax and
// tip proportionally to each user's item share, all through
// money.Apportion so the per-item and per-receipt sums reconcile to the
// cent.
func Allocate(r *models.Receipt) (*Allocation, error) {
	if r.SubtotalCents <= 0 {
		return nil, errs.Validationf("cannot finalize receipt with subtotal %d", r.SubtotalCents)
	}

	itemOwed := make(map[string]int64)
	for _, item := range r.Items {
		weights := make([]money.Weight, len(item.Splits))
		for i, split := range item.Splits {
			weights[i] = money.Weight{UserID: split.UserID, Weight: split.ShareQuantity}
		}
		for _, share := range money.Apportion(item.LineTotalCents(), weights) {
			itemOwed[share.UserID] += share.Cents
		}
	}

	// Tax and tip follow each user's proportion of the subtotal.
	userIDs := make([]string, 0, len(itemOwed))
	for id := range itemOwed {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	weights := make([]money.Weight, len(userIDs))
	for i, id := range userIDs {
		weights[i] = money.Weight{UserID: id, Weight: decimal.NewFromInt(itemOwed[id])}
	}

	taxShare := make(map[string]int64, len(userIDs))
	for _, s := range money.Apportion(r.TaxCents, weights) {
		taxShare[s.UserID] = s.Cents
	}
	tipShare := make(map[string]int64, len(userIDs))
	for _, s := range money.Apportion(r.TipCents, weights) {
		tipShare[s.UserID] = s.Cents
	}

	totalOwed := make(map[string]int64, len(userIDs))
	for _, id := range userIDs {
		totalOwed[id] = itemOwed[id] + taxShare[id] + tipShare[id]
	}

	return &Allocation{
		ItemOwedCents:  itemOwed,
		TaxShareCents:  taxShare,
		TipShareCents:  tipShare,
		TotalOwedCents: totalOwed,
	}, nil
}
