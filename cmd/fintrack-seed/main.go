package main

import (
	"flag"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/seed"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()

	year := flag.Int("year", time.Now().Year(), "year to generate transactions for")
	perMonth := flag.Int("per-month", 20, "expenses generated per month")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "random seed; the same seed generates the same data")
	flag.Parse()

	bootLogger := cli.SetupLogger(log.ComponentSeed, "info")
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(log.ComponentSeed, cfg.LogLevel)

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
	defer store.Cleanup()

	tax := core.DefaultTaxonomy()
	svc := services.NewTransactionService(store.Store, tax, log.Nop())
	subs := seed.Generate(tax, seed.Options{
		Year:             *year,
		ExpensesPerMonth: *perMonth,
		Seed:             *seedValue,
	})

	var created int
	for _, sub := range subs {
		if ctx.Err() != nil {
			break
		}
		if _, err := svc.Submit(ctx, sub); err != nil {
			logger.Error("Failed to seed transaction", log.FieldTxDate, sub.Date, log.FieldCategory, sub.Category, log.FieldError, err)
			continue
		}
		created++
	}
	logger.Info("Seeding completed",
		log.FieldYear, *year, log.FieldBackend, cfg.DataBackend, log.FieldRecordCount, created, "generated", len(subs))
}
