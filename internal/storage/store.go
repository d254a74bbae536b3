// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/tallyhq/tally/internal/models"
)

// SettleResult is what a settlement changed: the recorded transfer, the
// entries it touched (with reduced open amounts), and the receipt status
// after the write (settled when the last entry closed).
type SettleResult struct {
	Settlement     *models.Settlement
	UpdatedEntries []models.LedgerEntry
	ReceiptStatus  models.ReceiptStatus
}

// Store defines the persistence operations the engine needs. The
// implementation must give MutateDraft, FinalizeReceipt and Settle
// all-or-nothing semantics: readers never observe a partial write, and a
// lost compare-and-swap surfaces as errs.ErrVersionConflict without any
// state change.
type Store interface {
	// CreateReceipt persists a new draft receipt, assigning ID, version 1
	// and timestamps.
	CreateReceipt(ctx context.Context, r *models.Receipt) error

	// GetReceipt retrieves a receipt with its items, payments and comments.
	GetReceipt(ctx context.Context, id string) (*models.Receipt, error)

	ListReceiptsByOwner(ctx context.Context, ownerID string) ([]*models.Receipt, error)
	ListReceiptsByFolder(ctx context.Context, folderID string) ([]*models.Receipt, error)

	// MutateDraft loads the receipt, runs mutate on it, and commits the
	// result in one transaction gated by a conditional update on
	// (id, expectedVersion, status=draft). The committed version is the
	// expected version plus exactly one. Returns errs.ErrImmutableState
	// for non-draft receipts and errs.ErrVersionConflict when the
	// compare-and-swap matches nothing.
	MutateDraft(ctx context.Context, id string, expectedVersion int64, mutate func(*models.Receipt) error) (*models.Receipt, error)

	// FinalizeReceipt loads the receipt, runs build to produce the ledger
	// entries, then persists the entries and flips status to finalized in
	// the same transaction, gated like MutateDraft. A failure anywhere
	// rolls the whole commit back.
	FinalizeReceipt(ctx context.Context, id string, expectedVersion int64, build func(*models.Receipt) ([]models.LedgerEntry, error)) ([]models.LedgerEntry, error)

	ListEntriesByReceipt(ctx context.Context, receiptID string) ([]models.LedgerEntry, error)
	ListOpenEntriesBetween(ctx context.Context, debtorID, creditorID, receiptID string) ([]models.LedgerEntry, error)

	// Settle applies the transfer to the open entries between the pair,
	// oldest first, inside one transaction that also records the
	// settlement and flips the receipt to settled when its last entry
	// closes. Returns errs.ErrOverSettlement, mutating nothing, when the
	// amount exceeds the open balance between the pair.
	Settle(ctx context.Context, s *models.Settlement) (*SettleResult, error)

	// GetBalance aggregates the user's open entries.
	GetBalance(ctx context.Context, userID string) (*models.Balance, error)

	ListSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error)

	CreateFolder(ctx context.Context, f *models.Folder) error
	GetFolder(ctx context.Context, id string) (*models.Folder, error)
	ListFoldersByOwner(ctx context.Context, ownerID string) ([]*models.Folder, error)
	UpdateFolder(ctx context.Context, f *models.Folder) error
	DeleteFolder(ctx context.Context, id string) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
