package main

import (
	"log/slog"
	"os"

	"github.com/budgetly/budgetly/internal/api"
	"github.com/budgetly/budgetly/internal/assistant"
	"github.com/budgetly/budgetly/internal/auth"
	"github.com/budgetly/budgetly/internal/chat"
	"github.com/budgetly/budgetly/internal/config"
	"github.com/budgetly/budgetly/internal/handoff"
	"github.com/budgetly/budgetly/internal/metrics"
	"github.com/budgetly/budgetly/internal/receipts"
	"github.com/budgetly/budgetly/internal/split"
	"github.com/budgetly/budgetly/internal/storage/sqlite"
	"github.com/budgetly/budgetly/pkg/logging"
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

	hand := handoff.NewStore(cfg.HandoffTTL)
	defer hand.Close()

	// The keyword simulation answers when no backend is configured.
	var responder chat.Responder = chat.KeywordResponder{}
	if cfg.AssistantURL != "" {
		responder = assistant.NewClient(cfg.AssistantURL)
	}

	var submitter split.Submitter
	if cfg.SubmitURL != "" {
		submitter = split.NewHTTPSubmitter(cfg.SubmitURL)
	}

	server := api.NewServer(cfg, api.Dependencies{
		Store:         store,
		Authenticator: auth.NewPasswordAuthenticator(store),
		JWT:           auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration),
		Responder:     responder,
		Analyzer:      receipts.NewClient(cfg.ReceiptURL),
		Handoff:       hand,
		Metrics:       metrics.New(),
		Submitter:     submitter,
	})

	if err := server.Start(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
