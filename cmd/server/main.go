package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wasatext/internal/cleanup"
	"github.com/wasatext/internal/config"
	"github.com/wasatext/internal/db"
	"github.com/wasatext/internal/http"
	"github.com/wasatext/internal/logger"
	"github.com/wasatext/internal/service"
	"github.com/wasatext/internal/session"
	"github.com/wasatext/internal/system"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.InitLogger(cfg.Environment, cfg.LogJSON)
	appLogger.Info("configuration loaded",
		"environment", cfg.Environment,
		"address", cfg.ServerAddress,
		"database", cfg.DatabasePath,
		"uploads", cfg.UploadsDir,
		"token_mode", cfg.Auth.TokenMode,
	)

	database, err := db.Init(cfg.DatabasePath)
	if err != nil {
		appLogger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	issuer, err := session.New(cfg.Auth.TokenMode, cfg.Auth.JWTSecret)
	if err != nil {
		appLogger.Error("failed to create identifier issuer", "error", err)
		os.Exit(1)
	}

	chat := service.NewChatService(database, issuer, cfg, appLogger)
	collector := system.NewCollector(database, cfg.DatabasePath, cfg.UploadsDir)

	janitor := cleanup.NewJanitor(database, cfg.UploadsDir, appLogger)
	if cfg.Cleanup.Schedule != "" {
		if err := janitor.Start(cfg.Cleanup.Schedule); err != nil {
			appLogger.Error("failed to start uploads janitor", "error", err)
			os.Exit(1)
		}
	}

	server := http.NewServer(cfg, chat, collector, appLogger)

	go func() {
		if err := server.Run(); err != nil {
			appLogger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("server shutdown error", "error", err)
	}
	select {
	case <-janitor.Stop().Done():
	case <-ctx.Done():
	}
	appLogger.Info("server stopped")
}
