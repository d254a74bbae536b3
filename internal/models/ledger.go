package models

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	// EntryOpen means some amount of the debt remains unpaid.
	EntryOpen EntryStatus = "open"
	// EntrySettled means the debt has been paid in full.
	EntrySettled EntryStatus = "settled"
)

// LedgerEntry is one directed debt obligation between two users, produced
// when a receipt is finalized. Its identity and AmountCents are immutable;
// only SettledCents, Status and SettledAt change, and only through
// settlement.
type LedgerEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string `json:"id"`

	// ReceiptID is the receipt this entry was generated from.
	ReceiptID string `json:"receipt_id"`

	// DebtorID owes CreditorID.
	DebtorID   string `json:"debtor_id"`
	CreditorID string `json:"creditor_id"`

	// AmountCents is the original obligation, always positive.
	AmountCents int64 `json:"amount_cents"`

	// SettledCents is how much has been paid so far, in [0, AmountCents].
	SettledCents int64 `json:"settled_cents"`

	Status EntryStatus `json:"status"`

	// CreatedAt is a Unix timestamp; settlement consumes entries
	// oldest-created-first.
	CreatedAt int64 `json:"created_at"`

	// SettledAt is set when the entry reaches zero open amount.
	SettledAt int64 `json:"settled_at,omitempty"`
}

// OpenCents returns how much of the obligation remains unpaid.
func (e LedgerEntry) OpenCents() int64 {
	return e.AmountCents - e.SettledCents
}

// Balance is the aggregate of a user's open ledger entries.
type Balance struct {
	UserID string `json:"user_id"`

	// OwedByCents sums open amounts where the user is the debtor.
	OwedByCents int64 `json:"owed_by_cents"`

	// OwedToCents sums open amounts where the user is the creditor.
	OwedToCents int64 `json:"owed_to_cents"`

	// NetCents is OwedToCents minus OwedByCents.
	NetCents int64 `json:"net_cents"`
}
