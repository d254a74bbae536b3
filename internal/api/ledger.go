package api

import (
	"net/http"
)

type settleRequest struct {
	FromUserID  string `json:"from_user_id"`
	ToUserID    string `json:"to_user_id"`
	ReceiptID   string `json:"receipt_id"`
	AmountCents int64  `json:"amount_cents"`
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.ledger.Settle(r.Context(), userID(r.Context()),
		req.FromUserID, req.ToUserID, req.ReceiptID, req.AmountCents)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"settlement":      result.Settlement,
		"updated_entries": result.UpdatedEntries,
		"receipt_status":  result.ReceiptStatus,
	})
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledger.GetBalance(r.Context(), userID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *Handler) listSettlements(w http.ResponseWriter, r *http.Request) {
	other := r.URL.Query().Get("user")
	if other == "" {
		writeError(w, http.StatusBadRequest, "user query parameter required")
		return
	}

	settlements, err := h.ledger.ListSettlementsBetween(r.Context(), userID(r.Context()), other)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlements)
}
