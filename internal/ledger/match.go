package ledger

import (
	"sort"

	"github.com/tallyhq/tally/internal/models"
)

type position struct {
	userID    string
	remaining int64
}

// Match converts net positions into directed debtor->creditor entries.
//
// Creditors (net > 0) and debtors (net < 0) are each sorted ascending by
// user ID before the greedy sweep, so the output never depends on map
// iteration order. Each emitted amount is min(debtor remaining, creditor
// remaining); zero-amount entries are never emitted. The sweep preserves
// exact balance and reproducibility, not minimal transaction count.
//
// The returned entries carry debtor, creditor and amount; identity and
// timestamps are assigned at persistence.
func Match(net map[string]int64) []models.LedgerEntry {
	var creditors, debtors []position
	for userID, n := range net {
		switch {
		case n > 0:
			creditors = append(creditors, position{userID: userID, remaining: n})
		case n < 0:
			debtors = append(debtors, position{userID: userID, remaining: -n})
		}
	}
	sort.Slice(creditors, func(i, j int) bool { return creditors[i].userID < creditors[j].userID })
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].userID < debtors[j].userID })

	var entries []models.LedgerEntry
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		transfer := debtor.remaining
		if creditor.remaining < transfer {
			transfer = creditor.remaining
		}
		if transfer > 0 {
			entries = append(entries, models.LedgerEntry{
				DebtorID:    debtor.userID,
				CreditorID:  creditor.userID,
				AmountCents: transfer,
				Status:      models.EntryOpen,
			})
		}

		debtor.remaining -= transfer
		creditor.remaining -= transfer
		if debtor.remaining == 0 {
			i++
		}
		if creditor.remaining == 0 {
			j++
		}
	}
	return entries
}
