package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/models"
)

type receiptRow struct {
	ID            string         `db:"id"`
	OwnerID       string         `db:"owner_id"`
	FolderID      sql.NullString `db:"folder_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	Status        string         `db:"status"`
	SubtotalCents int64          `db:"subtotal_cents"`
	TaxCents      int64          `db:"tax_cents"`
	TipCents      int64          `db:"tip_cents"`
	TotalCents    int64          `db:"total_cents"`
	Version       int64          `db:"version"`
	CreatedAt     int64          `db:"created_at"`
	UpdatedAt     int64          `db:"updated_at"`
}

func (r receiptRow) toModel() *models.Receipt {
	return &models.Receipt{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		FolderID:      r.FolderID.String,
		Title:         r.Title,
		Description:   r.Description,
		Status:        models.ReceiptStatus(r.Status),
		SubtotalCents: r.SubtotalCents,
		TaxCents:      r.TaxCents,
		TipCents:      r.TipCents,
		TotalCents:    r.TotalCents,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type itemRow struct {
	ID             string          `db:"id"`
	ReceiptID      string          `db:"receipt_id"`
	Name           string          `db:"name"`
	UnitPriceCents int64           `db:"unit_price_cents"`
	Quantity       decimal.Decimal `db:"quantity"`
	Position       int64           `db:"position"`
}

type splitRow struct {
	ItemID        string          `db:"item_id"`
	UserID        string          `db:"user_id"`
	ShareQuantity decimal.Decimal `db:"share_quantity"`
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateReceipt persists a new draft receipt with its child rows.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, r *models.Receipt) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if r.CreatedAt == 0 {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.Status = models.StatusDraft
	r.Version = 1

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO receipts (id, owner_id, folder_id, title, description, status,
			    subtotal_cents, tax_cents, tip_cents, total_cents, version, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.OwnerID, nullIfEmpty(r.FolderID), r.Title, r.Description, r.Status,
			r.SubtotalCents, r.TaxCents, r.TipCents, r.TotalCents, r.Version, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt: %w", err)
		}
		return insertChildren(ctx, tx, r)
	})
}

// GetReceipt retrieves a receipt by ID, including items, payments and
// comments.
func (s *SQLiteStore) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	var r *models.Receipt
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		r, err = loadReceipt(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReceiptsByOwner returns the owner's receipts, newest first, without
// child rows.
func (s *SQLiteStore) ListReceiptsByOwner(ctx context.Context, ownerID string) ([]*models.Receipt, error) {
	return s.listReceipts(ctx, "owner_id = ?", ownerID)
}

// ListReceiptsByFolder returns the folder's receipts, newest first,
// without child rows.
func (s *SQLiteStore) ListReceiptsByFolder(ctx context.Context, folderID string) ([]*models.Receipt, error) {
	return s.listReceipts(ctx, "folder_id = ?", folderID)
}

func (s *SQLiteStore) listReceipts(ctx context.Context, where string, arg any) ([]*models.Receipt, error) {
	var rows []receiptRow
	err := sqlx.SelectContext(ctx, s.db, &rows,
		`SELECT id, owner_id, folder_id, title, description, status, subtotal_cents,
		        tax_cents, tip_cents, total_cents, version, created_at, updated_at
		 FROM receipts WHERE `+where+` ORDER BY created_at DESC, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	receipts := make([]*models.Receipt, len(rows))
	for i, row := range rows {
		receipts[i] = row.toModel()
	}
	return receipts, nil
}

// MutateDraft applies mutate to the current draft document and commits it
// behind a conditional update on (id, version, status). The version read
// inside the transaction is compared first so stale callers fail fast; the
// UPDATE predicate stays the authority either way, so a write that loses
// the race affects zero rows and surfaces as a version conflict.
func (s *SQLiteStore) MutateDraft(ctx context.Context, id string, expectedVersion int64, mutate func(*models.Receipt) error) (*models.Receipt, error) {
	var out *models.Receipt
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		r, err := loadReceipt(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Status != models.StatusDraft {
			return errs.ErrImmutableState
		}
		if r.Version != expectedVersion {
			return errs.ErrVersionConflict
		}

		if err := mutate(r); err != nil {
			return err
		}

		now := time.Now().Unix()
		res, err := tx.ExecContext(ctx,
			`UPDATE receipts
			 SET title = ?, description = ?, folder_id = ?, subtotal_cents = ?,
			     tax_cents = ?, tip_cents = ?, total_cents = ?, updated_at = ?,
			     version = version + 1
			 WHERE id = ? AND version = ? AND status = 'draft'`,
			r.Title, r.Description, nullIfEmpty(r.FolderID), r.SubtotalCents,
			r.TaxCents, r.TipCents, r.TotalCents, now,
			id, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to update receipt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return errs.ErrVersionConflict
		}

		if err := deleteChildren(ctx, tx, id); err != nil {
			return err
		}
		if err := insertChildren(ctx, tx, r); err != nil {
			return err
		}

		r.Version = expectedVersion + 1
		r.UpdatedAt = now
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FinalizeReceipt runs build against the draft document, persists the
// resulting ledger entries, and flips the receipt to finalized, all in one
// transaction. Exactly one of two concurrent finalize attempts can win:
// the loser's conditional update on status='draft' matches nothing.
func (s *SQLiteStore) FinalizeReceipt(ctx context.Context, id string, expectedVersion int64, build func(*models.Receipt) ([]models.LedgerEntry, error)) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		r, err := loadReceipt(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Status != models.StatusDraft {
			return errs.ErrImmutableState
		}
		if r.Version != expectedVersion {
			return errs.ErrVersionConflict
		}

		entries, err := build(r)
		if err != nil {
			return err
		}

		now := time.Now().Unix()
		res, err := tx.ExecContext(ctx,
			`UPDATE receipts SET status = 'finalized', updated_at = ?, version = version + 1
			 WHERE id = ? AND version = ? AND status = 'draft'`,
			now, id, expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to finalize receipt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if n == 0 {
			return errs.ErrVersionConflict
		}

		for i := range entries {
			e := &entries[i]
			e.ID = uuid.New().String()
			e.ReceiptID = id
			e.Status = models.EntryOpen
			e.CreatedAt = now
			_, err := tx.ExecContext(ctx,
				`INSERT INTO ledger_entries (id, receipt_id, debtor_id, creditor_id,
				    amount_cents, settled_cents, status, created_at)
				 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
				e.ID, e.ReceiptID, e.DebtorID, e.CreditorID, e.AmountCents, e.Status, e.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert ledger entry: %w", err)
			}
		}

		out = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadReceipt reads a receipt and all its child rows inside tx.
func loadReceipt(ctx context.Context, tx *sqlx.Tx, id string) (*models.Receipt, error) {
	var row receiptRow
	err := sqlx.GetContext(ctx, tx, &row,
		`SELECT id, owner_id, folder_id, title, description, status, subtotal_cents,
		        tax_cents, tip_cents, total_cents, version, created_at, updated_at
		 FROM receipts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	r := row.toModel()

	var itemRows []itemRow
	err = sqlx.SelectContext(ctx, tx, &itemRows,
		`SELECT id, receipt_id, name, unit_price_cents, quantity, position
		 FROM receipt_items WHERE receipt_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	for _, ir := range itemRows {
		item := models.Item{
			ID:             ir.ID,
			Name:           ir.Name,
			UnitPriceCents: ir.UnitPriceCents,
			Quantity:       ir.Quantity,
		}
		var splits []splitRow
		err = sqlx.SelectContext(ctx, tx, &splits,
			`SELECT item_id, user_id, share_quantity
			 FROM item_splits WHERE item_id = ? ORDER BY user_id`, ir.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get item splits: %w", err)
		}
		for _, sr := range splits {
			item.Splits = append(item.Splits, models.Split{
				UserID:        sr.UserID,
				ShareQuantity: sr.ShareQuantity,
			})
		}
		r.Items = append(r.Items, item)
	}

	err = sqlx.SelectContext(ctx, tx, &r.Payments,
		`SELECT user_id, amount_paid_cents
		 FROM receipt_payments WHERE receipt_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	err = sqlx.SelectContext(ctx, tx, &r.Comments,
		`SELECT user_id, body AS text, created_at
		 FROM receipt_comments WHERE receipt_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	return r, nil
}

func deleteChildren(ctx context.Context, tx *sqlx.Tx, receiptID string) error {
	for _, q := range []string{
		`DELETE FROM item_splits WHERE item_id IN (SELECT id FROM receipt_items WHERE receipt_id = ?)`,
		`DELETE FROM receipt_items WHERE receipt_id = ?`,
		`DELETE FROM receipt_payments WHERE receipt_id = ?`,
		`DELETE FROM receipt_comments WHERE receipt_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, receiptID); err != nil {
			return fmt.Errorf("failed to clear receipt children: %w", err)
		}
	}
	return nil
}

func insertChildren(ctx context.Context, tx *sqlx.Tx, r *models.Receipt) error {
	for i := range r.Items {
		item := &r.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO receipt_items (id, receipt_id, name, unit_price_cents, quantity, position)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, r.ID, item.Name, item.UnitPriceCents, item.Quantity.String(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		for _, split := range item.Splits {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO item_splits (item_id, user_id, share_quantity) VALUES (?, ?, ?)`,
				item.ID, split.UserID, split.ShareQuantity.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert item split: %w", err)
			}
		}
	}
	for i, p := range r.Payments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO receipt_payments (receipt_id, position, user_id, amount_paid_cents)
			 VALUES (?, ?, ?, ?)`,
			r.ID, i, p.UserID, p.AmountPaidCents,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}
	for i, c := range r.Comments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO receipt_comments (receipt_id, position, user_id, body, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			r.ID, i, c.UserID, c.Text, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
	}
	return nil
}
