package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/backend"
	"bilancio/internal/cli"
	gexport "bilancio/internal/export/google"
	memexport "bilancio/internal/export/memory"
	apphttp "bilancio/internal/http"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig()
	logger := log.Setup(cfg.LogLevel, "api")

	result, err := backend.Open(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	}, logger)
	if err != nil {
		logger.Error("Failed to open store backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", "error", err)
			}
		}()
	}

	// The queue is optional. Without it (or when a publish fails) month
	// applications run synchronously in the request.
	var publisher services.ApplyPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, applying months synchronously", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var exporter services.Exporter
	switch {
	case cfg.GoogleSpreadsheetID != "":
		client, err := gexport.New(context.Background(), gexport.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case backend.Type(cfg.DataBackend) == backend.Memory:
		// Local dev runs export against the in-process recorder so the
		// endpoint stays usable without Google credentials.
		exporter = memexport.New()
		logger.Info("In-memory report exporter initialized")
	}

	session := services.NewSession(services.SessionConfig{
		UserID:          cfg.UserID,
		Store:           result.Store,
		Publisher:       publisher,
		Exporter:        exporter,
		ReportCacheSize: cfg.ReportCacheSize,
		ReportCacheTTL:  cfg.ReportCacheTTL,
	})
	if err := session.Bootstrap(context.Background(), cfg.CutoffDay); err != nil {
		logger.Error("Session bootstrap failed", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		APIToken:           cfg.APIToken,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, session)

	ctx, stop := cli.ShutdownContext()
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting bilancio api",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"user_id", cfg.UserID,
		"cutoff_day", cfg.CutoffDay)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
