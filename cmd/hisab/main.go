package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hisab/internal/amqp"
	"hisab/internal/auth"
	"hisab/internal/config"
	apphttp "hisab/internal/http"
	"hisab/internal/members"
	"hisab/internal/report"
	"hisab/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	creds, err := auth.Open(cfg.DataDir, cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		logger.Error("Failed to open credential file", "error", err, "dir", cfg.DataDir)
		os.Exit(1)
	}

	dir, err := members.Open(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open member directory", "error", err, "dir", cfg.DataDir)
		os.Exit(1)
	}

	// The PDF capability is probed once at startup. A failed probe disables
	// the report endpoint rather than risking partial documents later.
	var builder *report.Builder
	if b := report.New(cfg.Currency, cfg.ReportFontPath); b.Probe() == nil {
		builder = b
		logger.Info("Report builder ready", "font", cfg.ReportFontPath)
	} else {
		logger.Warn("Report builder unavailable, /api/report disabled")
	}

	// Event publishing is optional; without a broker writes stay local-only.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer events.Close()
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewRecordService(events)
	sessions := auth.NewSessions(cfg.SessionTTL)

	srv := apphttp.NewServer(":"+cfg.Port, cfg.DataDir, creds, sessions, dir, svc, builder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting hisab server", "port", cfg.Port, "data_dir", cfg.DataDir)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
