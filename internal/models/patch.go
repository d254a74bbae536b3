package models

// DraftPatch is a partial update to a draft receipt. Every field is
// independently optional: nil means "leave unchanged", a non-nil pointer
// replaces the field wholesale.
//
// Totals are deliberately absent. Subtotal and total are recomputed from
// the post-merge document on every write; caller-supplied values are never
// trusted.
type DraftPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	FolderID    *string    `json:"folder_id,omitempty"`
	Items       *[]Item    `json:"items,omitempty"`
	TaxCents    *int64     `json:"tax_cents,omitempty"`
	TipCents    *int64     `json:"tip_cents,omitempty"`
	Payments    *[]Payment `json:"payments,omitempty"`
	Comments    *[]Comment `json:"comments,omitempty"`
}
