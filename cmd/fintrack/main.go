package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()

	host := flag.String("host", "", "host to bind to (overrides HOST)")
	port := flag.Int("port", 0, "port to run on (overrides PORT)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	bootLogger := cli.SetupLogger(log.ComponentApp, "info")
	cfg := cli.LoadAndValidateConfig(bootLogger)
	if *host != "" {
		cfg.Host = *host
	}
	if *port > 0 {
		cfg.Port = strconv.Itoa(*port)
	}
	if *debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	logger := cli.SetupLogger(log.ComponentApp, cfg.LogLevel)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	tax := core.DefaultTaxonomy()
	txSvc := services.NewTransactionService(store.Store, tax, logger)
	dashSvc := services.NewDashboardService(store.Store, tax, logger)

	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Events are optional; the dashboard works without them.
			logger.Warn("AMQP unavailable, transaction events disabled", log.FieldError, err)
		} else {
			txSvc.WithPublisher(publisher)
		}
	}
	defer txSvc.Close()

	srv := apphttp.NewServer(cfg.Addr(), txSvc, dashSvc, logger, apphttp.Options{
		RateLimitPerMin: cfg.RateLimitPerMin,
		ReadyCheck: func(ctx context.Context) error {
			_, err := store.Store.LoadAll(ctx)
			return err
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting fintrack server",
			"addr", cfg.Addr(), log.FieldBackend, cfg.DataBackend, "debug", cfg.Debug)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
