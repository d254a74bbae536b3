package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallyhq/tally/internal/models"
)

type createReceiptRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	FolderID    string           `json:"folder_id"`
	Items       []models.Item    `json:"items"`
	TaxCents    int64            `json:"tax_cents"`
	TipCents    int64            `json:"tip_cents"`
	Payments    []models.Payment `json:"payments"`
}

func (h *Handler) createReceipt(w http.ResponseWriter, r *http.Request) {
	var req createReceiptRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.receipts.Create(r.Context(), userID(r.Context()), &models.Receipt{
		Title:       req.Title,
		Description: req.Description,
		FolderID:    req.FolderID,
		Items:       req.Items,
		TaxCents:    req.TaxCents,
		TipCents:    req.TipCents,
		Payments:    req.Payments,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.receipts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *Handler) listReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.receipts.ListByOwner(r.Context(), userID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

type mutateDraftRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
	models.DraftPatch
}

type mutateDraftResponse struct {
	NewVersion    int64 `json:"new_version"`
	SubtotalCents int64 `json:"subtotal_cents"`
	TotalCents    int64 `json:"total_cents"`
}

func (h *Handler) mutateDraft(w http.ResponseWriter, r *http.Request) {
	var req mutateDraftRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.receipts.MutateDraft(r.Context(), chi.URLParam(r, "id"), req.ExpectedVersion, req.DraftPatch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mutateDraftResponse{
		NewVersion:    updated.Version,
		SubtotalCents: updated.SubtotalCents,
		TotalCents:    updated.TotalCents,
	})
}

type finalizeRequest struct {
	ExpectedVersion int64 `json:"expected_version"`
}

func (h *Handler) finalizeReceipt(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entries, err := h.receipts.Finalize(r.Context(), chi.URLParam(r, "id"), req.ExpectedVersion)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ledger_entries": entries})
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.ListEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
