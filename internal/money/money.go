// Package money implements integer-cent arithmetic for cost allocation.
//
// All amounts are int64 cents. Proportional division goes through
// shopspring/decimal so the intermediate ratios are exact, is rounded half
// up to whole cents, and any leftover drift against the target is repaired
// deterministically so the shares always sum to the target exactly.
package money

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Weight is one participant's claim on an amount being apportioned.
type Weight struct {
	UserID string
	Weight decimal.Decimal
}

// Share is one participant's apportioned cents.
type Share struct {
	UserID string
	Cents  int64
}

// RoundHalfUp rounds a decimal cent amount to a whole number of cents,
// with .5 rounding away from zero.
func RoundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// Apportion splits targetCents between the weighted participants so that
// the shares sum to targetCents exactly.
//
// Each raw share is targetCents * weight / totalWeight, rounded half up.
// Rounding drift is then repaired one cent at a time over participants
// ordered by raw share descending, then user ID ascending; a cent is never
// taken from a share that would go negative. The order makes the result
// independent of the input ordering: the largest share absorbs a single
// leftover cent, ties going to the lowest user ID.
//
// The returned shares are sorted by user ID. Apportioning zero cents
// yields all-zero shares. totalWeight must be positive.
func Apportion(targetCents int64, weights []Weight) []Share {
	total := decimal.Zero
	for _, w := range weights {
		total = total.Add(w.Weight)
	}

	type rawShare struct {
		userID string
		raw    decimal.Decimal
		cents  int64
	}

	target := decimal.NewFromInt(targetCents)
	shares := make([]rawShare, len(weights))
	var sum int64
	for i, w := range weights {
		raw := target.Mul(w.Weight).Div(total)
		shares[i] = rawShare{userID: w.UserID, raw: raw, cents: RoundHalfUp(raw)}
		sum += shares[i].cents
	}

	// Largest raw share first, ties to lowest user ID.
	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].raw.Cmp(shares[j].raw); c != 0 {
			return c > 0
		}
		return shares[i].userID < shares[j].userID
	})

	diff := targetCents - sum
	for diff != 0 {
		step := int64(1)
		if diff < 0 {
			step = -1
		}
		moved := false
		for i := range shares {
			if diff == 0 {
				break
			}
			if step < 0 && shares[i].cents == 0 {
				continue
			}
			shares[i].cents += step
			diff -= step
			moved = true
		}
		if !moved {
			// Nothing left to take a cent from; only reachable when the
			// target itself is inconsistent with the weights.
			break
		}
	}

	out := make([]Share, len(shares))
	for i, s := range shares {
		out[i] = Share{UserID: s.userID, Cents: s.cents}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
