package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/storage"
)

type entryRow struct {
	ID           string        `db:"id"`
	ReceiptID    string        `db:"receipt_id"`
	DebtorID     string        `db:"debtor_id"`
	CreditorID   string        `db:"creditor_id"`
	AmountCents  int64         `db:"amount_cents"`
	SettledCents int64         `db:"settled_cents"`
	Status       string        `db:"status"`
	CreatedAt    int64         `db:"created_at"`
	SettledAt    sql.NullInt64 `db:"settled_at"`
}

func (r entryRow) toModel() models.LedgerEntry {
	return models.LedgerEntry{
		ID:           r.ID,
		ReceiptID:    r.ReceiptID,
		DebtorID:     r.DebtorID,
		CreditorID:   r.CreditorID,
		AmountCents:  r.AmountCents,
		SettledCents: r.SettledCents,
		Status:       models.EntryStatus(r.Status),
		CreatedAt:    r.CreatedAt,
		SettledAt:    r.SettledAt.Int64,
	}
}

const entryColumns = `id, receipt_id, debtor_id, creditor_id, amount_cents,
	settled_cents, status, created_at, settled_at`

// ListEntriesByReceipt returns every ledger entry for the receipt in
// creation order.
func (s *SQLiteStore) ListEntriesByReceipt(ctx context.Context, receiptID string) ([]models.LedgerEntry, error) {
	var rows []entryRow
	err := sqlx.SelectContext(ctx, s.db, &rows,
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE receipt_id = ? ORDER BY created_at, rowid`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	entries := make([]models.LedgerEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toModel()
	}
	return entries, nil
}

// ListOpenEntriesBetween returns the open entries owed by debtorID to
// creditorID for the receipt, oldest first.
func (s *SQLiteStore) ListOpenEntriesBetween(ctx context.Context, debtorID, creditorID, receiptID string) ([]models.LedgerEntry, error) {
	var rows []entryRow
	err := sqlx.SelectContext(ctx, s.db, &rows,
		`SELECT `+entryColumns+` FROM ledger_entries
		 WHERE receipt_id = ? AND debtor_id = ? AND creditor_id = ? AND status = 'open'
		 ORDER BY created_at, rowid`, receiptID, debtorID, creditorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open entries: %w", err)
	}
	entries := make([]models.LedgerEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toModel()
	}
	return entries, nil
}

// Settle reduces the open entries between the pair oldest-first, records
// the settlement, and flips the receipt to settled when its last entry
// closes, all in one transaction. The requested amount must not exceed the
// open balance between the pair; an over-settlement mutates nothing.
//
// Each entry decrement is a conditional update gated on the settled amount
// read in this transaction, with the amount_cents ceiling in the
// predicate, so the open amount can never be driven below zero even under
// concurrent settlements.
func (s *SQLiteStore) Settle(ctx context.Context, set *models.Settlement) (*storage.SettleResult, error) {
	if set.AmountCents <= 0 {
		return nil, errs.Validationf("settlement amount must be positive, got %d", set.AmountCents)
	}

	var result *storage.SettleResult
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var receiptStatus string
		err := sqlx.GetContext(ctx, tx, &receiptStatus,
			`SELECT status FROM receipts WHERE id = ?`, set.ReceiptID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("receipt %s: %w", set.ReceiptID, errs.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get receipt status: %w", err)
		}

		var rows []entryRow
		err = sqlx.SelectContext(ctx, tx, &rows,
			`SELECT `+entryColumns+` FROM ledger_entries
			 WHERE receipt_id = ? AND debtor_id = ? AND creditor_id = ? AND status = 'open'
			 ORDER BY created_at, rowid`,
			set.ReceiptID, set.FromUserID, set.ToUserID)
		if err != nil {
			return fmt.Errorf("failed to select open entries: %w", err)
		}

		var totalOpen int64
		for _, row := range rows {
			totalOpen += row.AmountCents - row.SettledCents
		}
		if set.AmountCents > totalOpen {
			return errs.ErrOverSettlement
		}

		now := time.Now().Unix()
		remaining := set.AmountCents
		var updated []models.LedgerEntry
		for _, row := range rows {
			if remaining == 0 {
				break
			}
			pay := row.AmountCents - row.SettledCents
			if remaining < pay {
				pay = remaining
			}
			newSettled := row.SettledCents + pay

			status := models.EntryOpen
			var settledAt any
			if newSettled == row.AmountCents {
				status = models.EntrySettled
				settledAt = now
			}

			res, err := tx.ExecContext(ctx,
				`UPDATE ledger_entries
				 SET settled_cents = settled_cents + ?, status = ?, settled_at = ?
				 WHERE id = ? AND settled_cents = ? AND settled_cents + ? <= amount_cents`,
				pay, status, settledAt, row.ID, row.SettledCents, pay,
			)
			if err != nil {
				return fmt.Errorf("failed to reduce ledger entry: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if n == 0 {
				// Someone else reduced this entry between our read and
				// write; abort the whole settlement and let the caller
				// retry against fresh state.
				return errs.ErrVersionConflict
			}

			e := row.toModel()
			e.SettledCents = newSettled
			e.Status = status
			if status == models.EntrySettled {
				e.SettledAt = now
			}
			updated = append(updated, e)
			remaining -= pay
		}

		if set.ID == "" {
			set.ID = uuid.New().String()
		}
		set.CreatedAt = now
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlements (id, receipt_id, from_user_id, to_user_id, amount_cents, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			set.ID, set.ReceiptID, set.FromUserID, set.ToUserID, set.AmountCents, set.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}

		var openLeft int64
		err = sqlx.GetContext(ctx, tx, &openLeft,
			`SELECT COUNT(*) FROM ledger_entries WHERE receipt_id = ? AND status = 'open'`,
			set.ReceiptID)
		if err != nil {
			return fmt.Errorf("failed to count open entries: %w", err)
		}

		finalStatus := models.ReceiptStatus(receiptStatus)
		if openLeft == 0 {
			res, err := tx.ExecContext(ctx,
				`UPDATE receipts SET status = 'settled', updated_at = ?, version = version + 1
				 WHERE id = ? AND status = 'finalized'`,
				now, set.ReceiptID,
			)
			if err != nil {
				return fmt.Errorf("failed to settle receipt: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if n == 0 {
				return errs.ErrVersionConflict
			}
			finalStatus = models.StatusSettled
		}

		result = &storage.SettleResult{
			Settlement:     set,
			UpdatedEntries: updated,
			ReceiptStatus:  finalStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetBalance sums the user's open entries on both sides of the ledger.
// It reads committed state only: balances never include a settlement that
// is still in flight.
func (s *SQLiteStore) GetBalance(ctx context.Context, userID string) (*models.Balance, error) {
	b := &models.Balance{UserID: userID}

	err := sqlx.GetContext(ctx, s.db, &b.OwedByCents,
		`SELECT COALESCE(SUM(amount_cents - settled_cents), 0)
		 FROM ledger_entries WHERE debtor_id = ? AND status = 'open'`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum owed-by: %w", err)
	}

	err = sqlx.GetContext(ctx, s.db, &b.OwedToCents,
		`SELECT COALESCE(SUM(amount_cents - settled_cents), 0)
		 FROM ledger_entries WHERE creditor_id = ? AND status = 'open'`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum owed-to: %w", err)
	}

	b.NetCents = b.OwedToCents - b.OwedByCents
	return b, nil
}

// ListSettlementsBetween returns the settlement history between two users
// in either direction, newest first.
func (s *SQLiteStore) ListSettlementsBetween(ctx context.Context, userA, userB string) ([]*models.Settlement, error) {
	rows, err := s.db.QueryxContext(ctx,
		`SELECT id, receipt_id, from_user_id, to_user_id, amount_cents, created_at
		 FROM settlements
		 WHERE (from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)
		 ORDER BY created_at DESC, id`,
		userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		set := &models.Settlement{}
		if err := rows.Scan(&set.ID, &set.ReceiptID, &set.FromUserID, &set.ToUserID,
			&set.AmountCents, &set.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
