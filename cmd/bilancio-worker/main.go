package main

import (
	"context"
	"os"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/backend"
	"bilancio/internal/cli"
	"bilancio/internal/log"
	"bilancio/internal/services"
	"bilancio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig()
	logger := log.Setup(cfg.LogLevel, "worker")

	logger.Info("Starting bilancio worker",
		"backend", cfg.DataBackend,
		"rollover_interval", cfg.RolloverInterval)

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
	if backend.Type(cfg.DataBackend) == backend.Memory {
		logger.Warn("Memory backend: applied months live in this process only, not in the api's store")
	}

	// Without a broker the worker still runs the rollover ticker; it just
	// never sees the api's apply requests.
	var consumer worker.ApplyConsumer
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		consumer = client
		logger.Info("AMQP consumer initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Warn("AMQP_URL not set, running rollover ticker only")
	}

	session := services.NewSession(services.SessionConfig{
		UserID: cfg.UserID,
		Store:  result.Store,
	})

	w := worker.NewApplyWorker(consumer, session.Materializer, cfg.RolloverInterval)

	ctx, stop := cli.ShutdownContext()
	defer stop()

	if err := w.StartupCatchUp(ctx); err != nil {
		// The rollover ticker re-applies the month soon anyway.
		logger.Error("Startup catch-up failed", "error", err)
	}

	if err := w.Start(ctx); err != nil {
		logger.Error("Failed to start apply worker", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		logger.Error("Worker shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}
