package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(log.ComponentWorker, "info")
	cfg := cli.LoadAndValidateConfig(bootLogger)
	if err := cfg.ValidateMirror(); err != nil {
		bootLogger.Error("Mirror configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(log.ComponentWorker, cfg.LogLevel)
	logger.Info("Starting fintrack-mirror", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	factory := backend.NewFactory(logger)
	sourceCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid source backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	targetCfg, err := backend.MirrorFromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid mirror backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	source, err := factory.CreateBackend(ctx, sourceCfg)
	if err != nil {
		logger.Error("Failed to initialize source backend", log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}
	defer source.Cleanup()

	target, err := factory.CreateBackend(ctx, targetCfg)
	if err != nil {
		logger.Error("Failed to initialize mirror backend", log.FieldBackend, cfg.MirrorBackend, log.FieldError, err)
		os.Exit(1)
	}
	defer target.Cleanup()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	mirror := worker.NewMirrorWorker(target.Store, logger)

	// Catch up on events published while the worker was down.
	if err := mirror.StartupSyncCheck(ctx, source.Store); err != nil {
		logger.Error("Startup sync check failed", log.FieldOperation, log.OpMirror, log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeTransactionCreated(gctx, mirror.HandleTransactionCreated)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldOperation, log.OpConsume, log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("fintrack-mirror stopped", log.FieldOperation, log.OpShutdown)
}
