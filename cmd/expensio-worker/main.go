package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"expensio/internal/cli"
	"expensio/internal/config"
	"expensio/internal/events"
	"expensio/internal/log"
	"expensio/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker exited with error", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	audit := worker.NewAuditWriter(cfg.AuditLogPath, logger)

	logger.Info("Starting audit worker",
		"queue", cfg.AMQPQueue,
		"audit_log", cfg.AuditLogPath)

	err = client.ConsumeTransactionEvents(ctx, audit.HandleEvent)

	logger.Info("Audit worker finished", "events_processed", audit.Processed())
	return err
}
