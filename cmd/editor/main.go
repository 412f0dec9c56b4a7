package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mediagraph/infrastructure/config"
	"mediagraph/infrastructure/di"
	"mediagraph/interfaces/http/editor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeEditor(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler := editor.NewRouter(container.Sessions, container.Metrics, editor.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		EnableCORS:  cfg.EnableCORS,
		Debug:       cfg.IsDevelopment(),
	}, container.Logger)

	// No write timeout: event streams stay open
	srv := &http.Server{
		Addr:        cfg.EditorAddress,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting editor host",
			zap.String("address", cfg.EditorAddress),
			zap.String("backend", cfg.BackendURL),
			zap.Duration("saveDebounce", cfg.SaveDebounce),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down editor host...", zap.Bool("flushOnClose", cfg.FlushOnClose))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Ending the sessions closes their event streams so Shutdown can finish
	container.Sessions.CloseAll(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	_ = container.Logger.Sync()
	log.Println("Editor host stopped")
}
