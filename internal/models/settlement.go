package models

// Settlement is an append-only record of a transfer between two users that
// reduced one or more ledger entries. History is never rewritten; only the
// open amounts on the affected entries go down.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// ReceiptID is the receipt whose entries were reduced.
	ReceiptID string `json:"receipt_id"`

	// FromUserID is the debtor paying down their debt.
	FromUserID string `json:"from_user_id"`

	// ToUserID is the creditor being paid.
	ToUserID string `json:"to_user_id"`

	// AmountCents is the transfer amount, always positive and never more
	// than the open amount between the pair at the time of settlement.
	AmountCents int64 `json:"amount_cents"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"created_at"`
}
