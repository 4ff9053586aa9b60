package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"portfolio/backend/internal/app"
	"portfolio/backend/internal/config"
	"portfolio/backend/internal/githubsrc"
	"portfolio/backend/internal/retrieval"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	source := githubsrc.NewClient(cfg.GitHubUsername, cfg.GitHubToken)

	a, err := app.New(cfg, deps.DB, deps.Store, deps.Embedder, deps.LLM, source, queryLogger)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	// Build the knowledge base in the background so the server comes up
	// immediately; the chat endpoints answer 503 until it is ready.
	go a.InitializeKnowledgeBase(ctx)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	slog.Info("server starting", "port", cfg.ServerPort)
	if err := http.ListenAndServe(addr, a.Handler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
