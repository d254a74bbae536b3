package ledger

import (
	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/models"
)

// NetPositions derives paid-minus-owed per user from an allocation and the
// receipt's payments.
//
// The allocation reconciles every component to the receipt totals and the
// finalize preconditions guarantee payments sum to the total, so the net
// positions must sum to zero. A nonzero sum means the arithmetic itself is
// broken and aborts with an InvariantError.
func NetPositions(alloc *Allocation, payments []models.Payment) (map[string]int64, error) {
	net := make(map[string]int64, len(alloc.TotalOwedCents))
	for userID, owed := range alloc.TotalOwedCents {
		net[userID] -= owed
	}
	for _, p := range payments {
		net[p.UserID] += p.AmountPaidCents
	}

	var sum int64
	for _, n := range net {
		sum += n
	}
	if sum != 0 {
		return nil, errs.Invariantf("net positions sum to %d, want 0", sum)
	}
	return net, nil
}
