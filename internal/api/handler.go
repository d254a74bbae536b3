// Package api exposes the engine over a JSON HTTP API. Routing and
// request parsing live here; all domain rules stay in the services.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tallyhq/tally/internal/auth"
	"github.com/tallyhq/tally/internal/errs"
	"github.com/tallyhq/tally/internal/metrics"
	"github.com/tallyhq/tally/internal/service"
)

type ctxKey string

const ctxUserID ctxKey = "user_id"

// userID extracts the authenticated user ID from the context. Returns
// empty string if not set.
func userID(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserID).(string)
	return id
}

// Handler bundles the services behind the HTTP API.
type Handler struct {
	receipts      *service.ReceiptService
	ledger        *service.LedgerService
	folders       *service.FolderService
	authenticator *auth.Authenticator
}

// New constructs a Handler.
func New(receipts *service.ReceiptService, ledger *service.LedgerService, folders *service.FolderService, authenticator *auth.Authenticator) *Handler {
	return &Handler{
		receipts:      receipts,
		ledger:        ledger,
		folders:       folders,
		authenticator: authenticator,
	}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Route("/receipts", func(r chi.Router) {
			r.Post("/", h.createReceipt)
			r.Get("/", h.listReceipts)
			r.Get("/{id}", h.getReceipt)
			r.Patch("/{id}", h.mutateDraft)
			r.Post("/{id}/finalize", h.finalizeReceipt)
			r.Get("/{id}/entries", h.listEntries)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Post("/", h.createFolder)
			r.Get("/", h.listFolders)
			r.Put("/{id}", h.updateFolder)
			r.Delete("/{id}", h.deleteFolder)
			r.Get("/{id}/receipts", h.listFolderReceipts)
		})

		r.Post("/settlements", h.settle)
		r.Get("/settlements", h.listSettlements)
		r.Get("/ledger/balance", h.getBalance)
	})

	return r
}

// requireAuth validates the bearer token and stores the user ID in the
// request context.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "authorization token required")
			return
		}

		claims, err := h.authenticator.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the engine's typed errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrVersionConflict):
		writeError(w, http.StatusPreconditionFailed, "stale version, re-read and retry")
	case errors.Is(err, errs.ErrImmutableState):
		writeError(w, http.StatusConflict, "receipt is no longer a draft")
	case errors.Is(err, errs.ErrOverSettlement):
		writeError(w, http.StatusConflict, "amount exceeds open balance")
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not authorized")
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
