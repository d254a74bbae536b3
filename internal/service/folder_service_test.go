package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/errs"
)

func TestFolderLifecycle(t *testing.T) {
	store := newTestStore(t)
	svc := NewFolderService(store)
	ctx := context.Background()

	folder, err := svc.Create(ctx, "user-a", "trips", "#ff8800")
	require.NoError(t, err)
	require.NotEmpty(t, folder.ID)

	folders, err := svc.List(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, folders, 1)

	updated, err := svc.Update(ctx, "user-a", folder.ID, "trips 2026", "")
	require.NoError(t, err)
	require.Equal(t, "trips 2026", updated.Name)
	require.Equal(t, "#ff8800", updated.Color)

	require.NoError(t, svc.Delete(ctx, "user-a", folder.ID))
	_, err = store.GetFolder(ctx, folder.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFolderOwnerOnly(t *testing.T) {
	store := newTestStore(t)
	svc := NewFolderService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-a", "", "")
	require.True(t, errs.IsValidation(err))

	folder, err := svc.Create(ctx, "user-a", "trips", "")
	require.NoError(t, err)

	_, err = svc.Update(ctx, "user-b", folder.ID, "mine now", "")
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	err = svc.Delete(ctx, "user-b", folder.ID)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}
