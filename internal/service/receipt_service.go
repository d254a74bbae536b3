// Package service implements the engine's operations on top of the
// storage layer: draft lifecycle, finalization, settlement and balance
// queries. Services return the typed errors from internal/errs; callers
// own retry policy.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/ledger"
	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/storage"
)

// ReceiptService owns the receipt lifecycle: create, mutate while draft,
// and finalize into ledger entries.
type ReceiptService struct {
	store storage.Store
}

// NewReceiptService creates a ReceiptService with the given storage
// backend.
func NewReceiptService(store storage.Store) *ReceiptService {
	return &ReceiptService{store: store}
}

// Create validates and persists a new draft receipt owned by ownerID.
// Totals are computed server-side.
func (s *ReceiptService) Create(ctx context.Context, ownerID string, r *models.Receipt) (*models.Receipt, error) {
	if r.Title == "" {
		return nil, errs.Validationf("title is required")
	}
	if r.TaxCents < 0 || r.TipCents < 0 {
		return nil, errs.Validationf("tax and tip must be non-negative")
	}
	if err := validateItems(r.Items); err != nil {
		return nil, err
	}
	if err := validatePayments(r.Payments); err != nil {
		return nil, err
	}

	r.OwnerID = ownerID
	recomputeTotals(r)

	if err := s.store.CreateReceipt(ctx, r); err != nil {
		slog.Error("create receipt failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	slog.Info("receipt created", "receipt_id", r.ID, "owner_id", ownerID, "total_cents", r.TotalCents)
	return r, nil
}

// Get retrieves a receipt by ID.
func (s *ReceiptService) Get(ctx context.Context, id string) (*models.Receipt, error) {
	return s.store.GetReceipt(ctx, id)
}

// ListByOwner returns the owner's receipts.
func (s *ReceiptService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Receipt, error) {
	return s.store.ListReceiptsByOwner(ctx, ownerID)
}

// ListByFolder returns a folder's receipts.
func (s *ReceiptService) ListByFolder(ctx context.Context, folderID string) ([]*models.Receipt, error) {
	return s.store.ListReceiptsByFolder(ctx, folderID)
}

// MutateDraft merges the patch into the draft identified by id, provided
// the caller's expected version still matches. Present patch fields
// replace their counterparts; absent fields are untouched. Subtotal and
// total are recomputed from the merged document. On success the new
// version is exactly expectedVersion+1.
func (s *ReceiptService) MutateDraft(ctx context.Context, id string, expectedVersion int64, patch models.DraftPatch) (*models.Receipt, error) {
	updated, err := s.store.MutateDraft(ctx, id, expectedVersion, func(r *models.Receipt) error {
		if patch.Title != nil {
			if *patch.Title == "" {
				return errs.Validationf("title cannot be empty")
			}
			r.Title = *patch.Title
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.FolderID != nil {
			r.FolderID = *patch.FolderID
		}
		if patch.Items != nil {
			r.Items = *patch.Items
		}
		if patch.TaxCents != nil {
			if *patch.TaxCents < 0 {
				return errs.Validationf("tax must be non-negative, got %d", *patch.TaxCents)
			}
			r.TaxCents = *patch.TaxCents
		}
		if patch.TipCents != nil {
			if *patch.TipCents < 0 {
				return errs.Validationf("tip must be non-negative, got %d", *patch.TipCents)
			}
			r.TipCents = *patch.TipCents
		}
		if patch.Payments != nil {
			r.Payments = *patch.Payments
		}
		if patch.Comments != nil {
			now := time.Now().Unix()
			comments := *patch.Comments
			for i := range comments {
				if comments[i].CreatedAt == 0 {
					comments[i].CreatedAt = now
				}
			}
			r.Comments = comments
		}

		if err := validateItems(r.Items); err != nil {
			return err
		}
		if err := validatePayments(r.Payments); err != nil {
			return err
		}
		recomputeTotals(r)
		return nil
	})
	if err != nil {
		slog.Warn("draft mutation rejected", "receipt_id", id, "expected_version", expectedVersion, "error", err)
		return nil, err
	}

	slog.Info("draft mutated", "receipt_id", id, "version", updated.Version, "total_cents", updated.TotalCents)
	return updated, nil
}

// Finalize runs the allocation pipeline and atomically commits the
// resulting ledger entries together with the draft -> finalized status
// flip. Preconditions checked before any write: the receipt is a draft at
// the expected version, its subtotal is positive, the item invariants
// still hold, and payments sum to the total exactly.
func (s *ReceiptService) Finalize(ctx context.Context, id string, expectedVersion int64) ([]models.LedgerEntry, error) {
	entries, err := s.store.FinalizeReceipt(ctx, id, expectedVersion, func(r *models.Receipt) ([]models.LedgerEntry, error) {
		if err := validateItems(r.Items); err != nil {
			return nil, err
		}
		if paid := paymentSum(r.Payments); paid != r.TotalCents {
			return nil, errs.Validationf("payments sum to %d, want total %d", paid, r.TotalCents)
		}

		alloc, err := ledger.Allocate(r)
		if err != nil {
			return nil, err
		}
		net, err := ledger.NetPositions(alloc, r.Payments)
		if err != nil {
			return nil, err
		}
		return ledger.Match(net), nil
	})
	if err != nil {
		metrics.FinalizeTotal.WithLabelValues("error").Inc()
		slog.Warn("finalize rejected", "receipt_id", id, "expected_version", expectedVersion, "error", err)
		return nil, err
	}

	metrics.FinalizeTotal.WithLabelValues("ok").Inc()
	slog.Info("receipt finalized", "receipt_id", id, "entries", len(entries))
	return entries, nil
}
