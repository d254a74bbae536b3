package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/models"
	"github.com/tallyhq/tally/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// dinnerDraft is the canonical two-person receipt: one item of 2 x 15.99
// split evenly, 3.20 tax, 4.80 tip. Each person owes 19.99.
func dinnerDraft() *models.Receipt {
	return &models.Receipt{
		Title: "dinner",
		Items: []models.Item{
			{
				Name:           "pasta",
				UnitPriceCents: 1599,
				Quantity:       decimal.NewFromInt(2),
				Splits: []models.Split{
					{UserID: "user-a", ShareQuantity: decimal.NewFromInt(1)},
					{UserID: "user-b", ShareQuantity: decimal.NewFromInt(1)},
				},
			},
		},
		TaxCents: 320,
		TipCents: 480,
		Payments: []models.Payment{
			{UserID: "user-a", AmountPaidCents: 2000},
			{UserID: "user-b", AmountPaidCents: 1998},
		},
	}
}

func TestCreateComputesTotalsServerSide(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	draft := dinnerDraft()
	draft.SubtotalCents = 999999 // caller-supplied totals are discarded
	draft.TotalCents = 1

	r, err := svc.Create(ctx, "user-a", draft)
	require.NoError(t, err)
	require.Equal(t, int64(3198), r.SubtotalCents)
	require.Equal(t, int64(3998), r.TotalCents)
	require.Equal(t, "user-a", r.OwnerID)
	require.Equal(t, models.StatusDraft, r.Status)
	require.Equal(t, int64(1), r.Version)
}

func TestCreateValidation(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.Receipt)
	}{
		{"missing title", func(r *models.Receipt) { r.Title = "" }},
		{"negative tax", func(r *models.Receipt) { r.TaxCents = -1 }},
		{"negative unit price", func(r *models.Receipt) { r.Items[0].UnitPriceCents = -100 }},
		{"zero quantity", func(r *models.Receipt) { r.Items[0].Quantity = decimal.Zero }},
		{"shares under quantity", func(r *models.Receipt) {
			r.Items[0].Splits = r.Items[0].Splits[:1]
		}},
		{"duplicate split user", func(r *models.Receipt) {
			r.Items[0].Splits[1].UserID = "user-a"
		}},
		{"negative payment", func(r *models.Receipt) {
			r.Payments[0].AmountPaidCents = -5
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := dinnerDraft()
			tt.mutate(draft)
			_, err := svc.Create(ctx, "user-a", draft)
			require.True(t, errs.IsValidation(err), "want validation error, got %v", err)
		})
	}
}

func TestMutateDraftMergesPatch(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	r, err := svc.Create(ctx, "user-a", dinnerDraft())
	require.NoError(t, err)

	title := "dinner at luigi's"
	tip := int64(600)
	updated, err := svc.MutateDraft(ctx, r.ID, 1, models.DraftPatch{
		Title:    &title,
		TipCents: &tip,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), updated.Version)
	require.Equal(t, title, updated.Title)
	// Untouched fields survive, totals follow the new tip.
	require.Len(t, updated.Items, 1)
	require.Equal(t, int64(3198), updated.SubtotalCents)
	require.Equal(t, int64(4118), updated.TotalCents)
}

func TestMutateDraftStaleVersion(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	r, err := svc.Create(ctx, "user-a", dinnerDraft())
	require.NoError(t, err)

	desc := "with dessert"
	_, err = svc.MutateDraft(ctx, r.ID, 1, models.DraftPatch{Description: &desc})
	require.NoError(t, err)

	_, err = svc.MutateDraft(ctx, r.ID, 1, models.DraftPatch{Description: &desc})
	require.ErrorIs(t, err, errs.ErrVersionConflict)
}

func TestMutateDraftRejectsInvalidMerge(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	r, err := svc.Create(ctx, "user-a", dinnerDraft())
	require.NoError(t, err)

	badItems := dinnerDraft().Items
	badItems[0].Splits[0].ShareQuantity = decimal.NewFromInt(5)
	_, err = svc.MutateDraft(ctx, r.ID, 1, models.DraftPatch{Items: &badItems})
	require.True(t, errs.IsValidation(err))

	// The rejected write must not burn the version.
	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Version)
}

func TestFinalizeProducesLedgerEntries(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	r, err := svc.Create(ctx, "user-a", dinnerDraft())
	require.NoError(t, err)

	// Each owes 1999; user-a paid 2000, user-b paid 1998. One cent flows
	// from b to a.
	entries, err := svc.Finalize(ctx, r.ID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "user-b", entries[0].DebtorID)
	require.Equal(t, "user-a", entries[0].CreditorID)
	require.Equal(t, int64(1), entries[0].AmountCents)
	require.Equal(t, models.EntryOpen, entries[0].Status)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFinalized, got.Status)
	require.Equal(t, int64(2), got.Version)
}

func TestFinalizeRejectsPaymentMismatch(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	draft := dinnerDraft()
	draft.Payments = []models.Payment{
		{UserID: "user-a", AmountPaidCents: 2000},
		{UserID: "user-b", AmountPaidCents: 1997},
	}
	r, err := svc.Create(ctx, "user-a", draft)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, r.ID, 1)
	require.True(t, errs.IsValidation(err))

	// Nothing committed: still a mutable draft with no entries.
	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusDraft, got.Status)
	require.Equal(t, int64(1), got.Version)

	listed, err := store.ListEntriesByReceipt(ctx, r.ID)
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestFinalizeBalancedReceiptYieldsNoEntries(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	// Everyone pays exactly what they owe.
	draft := dinnerDraft()
	draft.Payments = []models.Payment{
		{UserID: "user-a", AmountPaidCents: 1999},
		{UserID: "user-b", AmountPaidCents: 1999},
	}
	r, err := svc.Create(ctx, "user-a", draft)
	require.NoError(t, err)

	entries, err := svc.Finalize(ctx, r.ID, 1)
	require.NoError(t, err)
	require.Empty(t, entries)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFinalized, got.Status)
}

func TestFinalizeTwiceFails(t *testing.T) {
	store := newTestStore(t)
	svc := NewReceiptService(store)
	ctx := context.Background()

	r, err := svc.Create(ctx, "user-a", dinnerDraft())
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, r.ID, 1)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, r.ID, 1)
	require.ErrorIs(t, err, errs.ErrImmutableState)
}
