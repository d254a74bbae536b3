package service

import (
	"context"
	"log/slog"

	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/storage"
)

// LedgerService exposes the post-finalize side of the engine: settling
// debts and reading balances.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// Settle records a transfer of amountCents from fromUserID to toUserID
// against the receipt's open entries, oldest first. Only the debtor or
// the creditor may settle; actorID is the authenticated caller.
func (s *LedgerService) Settle(ctx context.Context, actorID, fromUserID, toUserID, receiptID string, amountCents int64) (*storage.SettleResult, error) {
	if actorID != fromUserID && actorID != toUserID {
		return nil, errs.ErrUnauthorized
	}
	if fromUserID == toUserID {
		return nil, errs.Validationf("cannot settle with yourself")
	}

	result, err := s.store.Settle(ctx, &models.Settlement{
		ReceiptID:   receiptID,
		FromUserID:  fromUserID,
		ToUserID:    toUserID,
		AmountCents: amountCents,
	})
	if err != nil {
		metrics.SettleTotal.WithLabelValues("error").Inc()
		slog.Warn("settlement rejected",
			"receipt_id", receiptID, "from", fromUserID, "to", toUserID,
			"amount_cents", amountCents, "error", err)
		return nil, err
	}

	metrics.SettleTotal.WithLabelValues("ok").Inc()
	slog.Info("settlement applied",
		"settlement_id", result.Settlement.ID, "receipt_id", receiptID,
		"entries_touched", len(result.UpdatedEntries), "receipt_status", result.ReceiptStatus)
	return result, nil
}

// GetBalance aggregates the user's open ledger entries.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (*models.Balance, error) {
	return s.store.GetBalance(ctx, userID)
}

// ListEntries returns every ledger entry for a receipt in creation order.
func (s *LedgerService) ListEntries(ctx context.Context, receiptID string) ([]models.LedgerEntry, error) {
	return s.store.ListEntriesByReceipt(ctx, receiptID)
}

// ListOpenEntriesBetween returns the open debt from one user to another
// for a receipt, oldest first.
func (s *LedgerService) ListOpenEntriesBetween(ctx context.Context, debtorID, creditorID, receiptID string) ([]models.LedgerEntry, error) {
	return s.store.ListOpenEntriesBetween(ctx, debtorID, creditorID, receiptID)
}

// ListSettlementsBetween returns the settlement history between two
// users, newest first.
func (s *LedgerService) ListSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error) {
	return s.store.ListSettlementsBetween(ctx, userA, userB)
}
