package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/faqdesk/internal/api"
	"github.com/dgallion1/faqdesk/internal/config"
	"github.com/dgallion1/faqdesk/internal/mcpserver"
	"github.com/dgallion1/faqdesk/internal/pipeline"
	"github.com/dgallion1/faqdesk/internal/storage"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

func main() {
	cfg := config.Load()

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, nil)
	if cfg.JSONLogs() {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	log := slog.New(handler)

	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	ws := workspace.New(store, workspace.OptionsFromConfig(cfg), log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, ws, log)
	orch.Start(ctx)

	var mcpHandler http.Handler
	if cfg.MCPEnabled {
		mcpHandler = mcpserver.NewHTTPHandler(mcpserver.NewServer(ws, log), api.MCPPath)
	}

	// Initialize HTTP server.
	srv := api.NewServer(ws, orch, mcpHandler, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting faqdesk",
		"port", cfg.Port,
		"storage", cfg.StorageBackend,
		"languages", cfg.Languages,
		"mcp", cfg.MCPEnabled,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
