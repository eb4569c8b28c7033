package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/dclay/budgie/internal/config"
	"github.com/dclay/budgie/internal/database"
	budgieHttp "github.com/dclay/budgie/internal/http"
	"github.com/dclay/budgie/internal/http/importwizard"
	"github.com/dclay/budgie/internal/http/ledgerapi"
	"github.com/dclay/budgie/internal/ledger"
	"github.com/dclay/budgie/internal/ledger/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := store.New(db)
	ledgerService := ledger.NewService(repo)

	var (
		importsH = importwizard.NewHandler(repo, nil, cfg.Import.MaxUploadBytes)
		ledgerH  = ledgerapi.NewHandler(ledgerService)
	)

	router := budgieHttp.New(cfg.Auth.Secret, cfg.Server.AllowedOrigins, importsH, ledgerH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
