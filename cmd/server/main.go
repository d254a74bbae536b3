package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/tallyhq/tally/internal/api"
	"github.com/tallyhq/tally/internal/auth"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/service"
	"github.com/tallyhq/tally/internal/storage/sqlite"
	"github.com/tallyhq/tally/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	authenticator := auth.New(store, cfg.JWTSecret, cfg.TokenDuration)
	handler := api.New(
		service.NewReceiptService(store),
		service.NewLedgerService(store),
		service.NewFolderService(store),
		authenticator,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
