package service

import (
	"context"
	"log/slog"

	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/storage"
)

// FolderService manages receipt folders. Folder membership and sharing
// are handled outside this service; only the owner relationship is
// enforced here.
type FolderService struct {
	store storage.Store
}

// NewFolderService creates a FolderService with the given storage
// backend.
func NewFolderService(store storage.Store) *FolderService {
	return &FolderService{store: store}
}

// Create persists a new folder for ownerID.
func (s *FolderService) Create(ctx context.Context, ownerID, name, color string) (*models.Folder, error) {
	if name == "" {
		return nil, errs.Validationf("folder name is required")
	}

	folder := &models.Folder{OwnerID: ownerID, Name: name, Color: color}
	if err := s.store.CreateFolder(ctx, folder); err != nil {
		slog.Error("create folder failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	slog.Info("folder created", "folder_id", folder.ID, "owner_id", ownerID)
	return folder, nil
}

// List returns the owner's folders.
func (s *FolderService) List(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	return s.store.ListFoldersByOwner(ctx, ownerID)
}

// Update renames or recolors a folder. Only the owner may update it.
func (s *FolderService) Update(ctx context.Context, actorID, folderID, name, color string) (*models.Folder, error) {
	folder, err := s.store.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != actorID {
		return nil, errs.ErrUnauthorized
	}

	if name != "" {
		folder.Name = name
	}
	if color != "" {
		folder.Color = color
	}
	if err := s.store.UpdateFolder(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Delete removes a folder. Receipts in it survive with the folder
// reference cleared. Only the owner may delete it.
func (s *FolderService) Delete(ctx context.Context, actorID, folderID string) error {
	folder, err := s.store.GetFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.OwnerID != actorID {
		return errs.ErrUnauthorized
	}
	return s.store.DeleteFolder(ctx, folderID)
}
