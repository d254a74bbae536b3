package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type folderRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	folder, err := h.folders.Create(r.Context(), userID(r.Context()), req.Name, req.Color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

func (h *Handler) listFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.List(r.Context(), userID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

func (h *Handler) updateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	folder, err := h.folders.Update(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), req.Name, req.Color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

func (h *Handler) deleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := h.folders.Delete(r.Context(), userID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listFolderReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.receipts.ListByFolder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}
