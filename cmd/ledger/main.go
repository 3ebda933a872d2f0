package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/metrics"
	"ledger/internal/notify"
	"ledger/internal/state"
	"ledger/internal/worker"
)

// publishBuffer bounds notifications waiting for the broker.
const publishBuffer = 256

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error(), log.FieldBackend, cfg.StateBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	store := state.NewStore(result.KV, logger)
	snap, err := store.Restore(ctx)
	if err != nil {
		logger.Error("Failed to restore ledger state", log.FieldError, err.Error())
		os.Exit(1)
	}

	recorder := metrics.NewRecorder(true)
	sinks := []notify.Sink{notify.NewLogSink(logger)}

	var publisher *worker.PublishWorker
	if cfg.NotificationsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// The ledger works without the broker; notifications stay in the log.
			logger.Warn("AMQP unavailable, notifications will only be logged", log.FieldError, err.Error())
		} else {
			defer client.Close()
			publisher = worker.NewPublishWorker(client, publishBuffer, logger)
			sinks = append(sinks, publisher)
		}
	} else {
		logger.Info("AMQP_URL not set, notifications will only be logged")
	}

	engine := ledger.NewEngine(ledger.Options{Logger: logger})
	engine.Restore(snap)
	recorder.SetState(engine.Snapshot())
	engine.Subscribe(store)
	engine.Subscribe(recorder)
	engine.Subscribe(notify.NewNotifier(logger, sinks...))

	opts := apphttp.Options{
		Engine:    engine,
		Themes:    store,
		Metrics:   recorder,
		Logger:    logger,
		RateLimit: cfg.RateLimit,
	}
	if p, ok := result.KV.(apphttp.Pinger); ok {
		opts.Ready = p
	}
	srv := apphttp.NewServer(":"+cfg.Port, opts)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting ledger server", "port", cfg.Port, log.FieldBackend, cfg.StateBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if publisher != nil {
		g.Go(func() error {
			return publisher.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
