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
)

type folderRow struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	CreatedAt int64  `db:"created_at"`
}

func (r folderRow) toModel() *models.Folder {
	return &models.Folder{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Name:      r.Name,
		Color:     r.Color,
		CreatedAt: r.CreatedAt,
	}
}

// CreateFolder persists a new folder, assigning ID and timestamp.
func (s *SQLiteStore) CreateFolder(ctx context.Context, f *models.Folder) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO folders (id, owner_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, f.Name, f.Color, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

// GetFolder retrieves a folder by ID.
func (s *SQLiteStore) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	var row folderRow
	err := sqlx.GetContext(ctx, s.db, &row,
		`SELECT id, owner_id, name, color, created_at FROM folders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("folder %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return row.toModel(), nil
}

// ListFoldersByOwner returns the owner's folders, newest first.
func (s *SQLiteStore) ListFoldersByOwner(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	var rows []folderRow
	err := sqlx.SelectContext(ctx, s.db, &rows,
		`SELECT id, owner_id, name, color, created_at
		 FROM folders WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	folders := make([]*models.Folder, len(rows))
	for i, row := range rows {
		folders[i] = row.toModel()
	}
	return folders, nil
}

// UpdateFolder updates a folder's name and color.
func (s *SQLiteStore) UpdateFolder(ctx context.Context, f *models.Folder) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE folders SET name = ?, color = ? WHERE id = ?`,
		f.Name, f.Color, f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("folder %s: %w", f.ID, errs.ErrNotFound)
	}
	return nil
}

// DeleteFolder removes a folder; receipts in it keep existing with their
// folder reference cleared by the schema.
func (s *SQLiteStore) DeleteFolder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("folder %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
