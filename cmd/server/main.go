package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docsift/internal/api"
	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The provider is built on the first analysis, not at startup.
	stats := embed.NewStats(cfg.StatsWindow)
	embedder := embed.NewLazy(func(ctx context.Context) (embed.Provider, error) {
		p, err := embed.New(ctx, cfg.Embed())
		if err != nil {
			return nil, err
		}
		log.Info("embedding provider ready", "provider", p.Name())
		return &embed.Timed{Provider: p, Stats: stats, Logger: log}, nil
	})

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, pipeline.NewAnalyzer(cfg, embedder, log), log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, pipeline.NewOutliner(cfg, log), stats, log, cfg)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		embedder.Close()
	}()

	log.Info("starting docsift", "port", cfg.Port, "embed_provider", cfg.EmbedProvider)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
