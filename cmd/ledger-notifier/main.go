package main

import (
	"context"
	"errors"
	"os"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentNotifier)

	if !cfg.NotificationsEnabled() {
		logger.Error("AMQP_URL is required by the notifier")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	handler := worker.NewNotificationHandler(logger)
	logger.Info("Starting ledger-notifier", "queue", cfg.AMQPQueue)

	if err := client.ConsumeNotifications(ctx, handler.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notification consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("ledger-notifier stopped", "handled", handler.Handled())
}
