package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/policylens/policylens/internal/analyzer"
	"github.com/policylens/policylens/internal/api"
	"github.com/policylens/policylens/internal/config"
	"github.com/policylens/policylens/internal/decode"
	"github.com/policylens/policylens/internal/llm"
	"github.com/policylens/policylens/internal/ratelimit"
	"github.com/policylens/policylens/internal/segment"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Shared call accounting and rate budget toward the external service.
	stats := llm.NewStats(time.Hour)
	gate := ratelimit.NewGate(cfg.MaxRequestsPerMinute, time.Minute)
	client := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, gate, stats, cfg.RequestTimeout)

	an := analyzer.New(client, decode.New(log, stats), log, analyzer.Config{
		PrimaryModel:        cfg.PrimaryModel,
		SecondaryModel:      cfg.SecondaryModel,
		MaxConcurrentChunks: cfg.MaxConcurrentChunks,
		Segmenter: segment.Config{
			MaxChunkSize: cfg.MaxChunkSize,
			OverlapSize:  cfg.OverlapSize,
		},
	})

	srv := api.NewServer(an, client, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
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

		client.Close()
	}()

	log.Info("starting policylens", "port", cfg.Port, "primary_model", cfg.PrimaryModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
