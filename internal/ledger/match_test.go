package ledger

import (
	"testing"

	"github.com/tallyhq/tally/internal/models"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		net  map[string]int64
		want []models.LedgerEntry
	}{
		{
			name: "single cent of imbalance",
			net:  map[string]int64{"alice": 1, "bob": -1},
			want: []models.LedgerEntry{
				{DebtorID: "bob", CreditorID: "alice", AmountCents: 1, Status: models.EntryOpen},
			},
		},
		{
			name: "one debtor pays two creditors",
			net:  map[string]int64{"a": 300, "b": 200, "c": -500},
			want: []models.LedgerEntry{
				{DebtorID: "c", CreditorID: "a", AmountCents: 300, Status: models.EntryOpen},
				{DebtorID: "c", CreditorID: "b", AmountCents: 200, Status: models.EntryOpen},
			},
		},
		{
			name: "two debtors share one creditor",
			net:  map[string]int64{"x": 1000, "m": -400, "n": -600},
			want: []models.LedgerEntry{
				{DebtorID: "m", CreditorID: "x", AmountCents: 400, Status: models.EntryOpen},
				{DebtorID: "n", CreditorID: "x", AmountCents: 600, Status: models.EntryOpen},
			},
		},
		{
			name: "zero positions emit nothing",
			net:  map[string]int64{"a": 0, "b": 0},
			want: nil,
		},
		{
			name: "debtor exhausts creditor mid-sweep",
			net:  map[string]int64{"a": 100, "b": 250, "y": -300, "z": -50},
			want: []models.LedgerEntry{
				{DebtorID: "y", CreditorID: "a", AmountCents: 100, Status: models.EntryOpen},
				{DebtorID: "y", CreditorID: "b", AmountCents: 200, Status: models.EntryOpen},
				{DebtorID: "z", CreditorID: "b", AmountCents: 50, Status: models.EntryOpen},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.net)

			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}

			// Σ emitted == Σ debts == Σ credits, and no entry is ever <= 0.
			var emitted, credits, debts int64
			for _, e := range got {
				emitted += e.AmountCents
				if e.AmountCents <= 0 {
					t.Errorf("entry %+v has non-positive amount", e)
				}
			}
			for _, n := range tt.net {
				if n > 0 {
					credits += n
				} else {
					debts += -n
				}
			}
			if emitted != credits || emitted != debts {
				t.Errorf("emitted %d, credits %d, debts %d; all must match", emitted, credits, debts)
			}
		})
	}
}

// Matching must not depend on map iteration order.
func TestMatchDeterministic(t *testing.T) {
	net := map[string]int64{
		"u1": 150, "u2": -90, "u3": 40, "u4": -100, "u5": 0,
	}

	first := Match(net)
	for run := 0; run < 20; run++ {
		again := Match(net)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d entries, want %d", run, len(again), len(first))
		}
		for i := range again {
			if again[i] != first[i] {
				t.Fatalf("run %d: entry %d = %+v, want %+v", run, i, again[i], first[i])
			}
		}
	}
}
