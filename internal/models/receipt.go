package models

import "github.com/shopspring/decimal"

// ReceiptStatus is the lifecycle state of a receipt.
type ReceiptStatus string

const (
	// StatusDraft is the only state in which a receipt may be mutated.
	StatusDraft ReceiptStatus = "draft"
	// StatusFinalized means ledger entries exist and the receipt is locked.
	StatusFinalized ReceiptStatus = "finalized"
	// StatusSettled is terminal: every ledger entry has been fully settled.
	StatusSettled ReceiptStatus = "settled"
)

// Receipt is the aggregate root for a shared expense.
//
// SubtotalCents and TotalCents are always server-computed from the items,
// tax and tip; caller-supplied totals are discarded. Version increases by
// exactly one per successful write and is the compare-and-swap token for
// draft mutation.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string `json:"id"`

	// OwnerID is the user who created the receipt.
	OwnerID string `json:"owner_id"`

	// FolderID is an optional reference to the folder holding this receipt.
	FolderID string `json:"folder_id,omitempty"`

	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      ReceiptStatus `json:"status"`

	Items    []Item    `json:"items"`
	Payments []Payment `json:"payments"`
	Comments []Comment `json:"comments,omitempty"`

	// SubtotalCents is the sum over items of unit price times quantity.
	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TipCents      int64 `json:"tip_cents"`
	// TotalCents is subtotal + tax + tip.
	TotalCents int64 `json:"total_cents"`

	// Version is the optimistic-concurrency token. Writes succeed only when
	// the caller's expected version matches, and bump it by exactly one.
	Version int64 `json:"version"`

	// CreatedAt and UpdatedAt are Unix timestamps maintained by the store.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Item is a single line on a receipt. The item cost is split between users
// by share quantity: the shares must sum to the item quantity exactly.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	Name string `json:"name"`

	// UnitPriceCents is the price of one unit, in cents. Never negative.
	UnitPriceCents int64 `json:"unit_price_cents"`

	// Quantity is how many units were bought. Decimal so that fractional
	// quantities (half a pitcher) stay exact.
	Quantity decimal.Decimal `json:"quantity"`

	Splits []Split `json:"splits"`
}

// LineTotalCents returns the cent cost of the whole line, rounding half up
// when the quantity is fractional.
func (it Item) LineTotalCents() int64 {
	return decimal.NewFromInt(it.UnitPriceCents).Mul(it.Quantity).Round(0).IntPart()
}

// Split assigns a share of an item's quantity to one user.
type Split struct {
	UserID string `json:"user_id"`

	// ShareQuantity is this user's portion of the item quantity. Positive,
	// and all shares of an item sum to the item quantity exactly.
	ShareQuantity decimal.Decimal `json:"share_quantity"`
}

// Payment records money a user put toward the receipt total.
type Payment struct {
	UserID string `json:"user_id" db:"user_id"`

	// AmountPaidCents is never negative. At finalize, payments must sum to
	// the receipt total exactly.
	AmountPaidCents int64 `json:"amount_paid_cents" db:"amount_paid_cents"`
}

// Comment is a note on a draft receipt.
type Comment struct {
	UserID    string `json:"user_id" db:"user_id"`
	Text      string `json:"text" db:"text"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
