package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/keepbook/keepbook/internal/app"
	"github.com/keepbook/keepbook/internal/ledger/accounts"
	"github.com/keepbook/keepbook/internal/ledger/balances"
	"github.com/keepbook/keepbook/internal/ledger/chart"
	"github.com/keepbook/keepbook/internal/ledger/commodities"
	"github.com/keepbook/keepbook/internal/ledger/export"
	"github.com/keepbook/keepbook/internal/ledger/slots"
	"github.com/keepbook/keepbook/internal/ledger/transactions"
	platformdb "github.com/keepbook/keepbook/internal/platform/db"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("keepbook", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	if _, err := os.Stat(cfg.BookPath); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if !cfg.CreateMissing {
			return errors.New("book file does not exist and BOOK_CREATE_MISSING is off")
		}
		logger.Info("creating new book", slog.String("path", cfg.BookPath))
	} else if cfg.BackupCopies > 0 {
		if err := platformdb.RotateBackups(cfg.BookPath, cfg.BackupCopies); err != nil {
			return err
		}
		logger.Info("rotated book backups", slog.Int("copies", cfg.BackupCopies))
	}

	handle, err := platformdb.Open(ctx, cfg.BookPath)
	if err != nil {
		return err
	}
	defer handle.Close()

	commodityRepo := commodities.NewRepository(handle)
	accountRepo := accounts.NewRepository(handle)
	slotRepo := slots.NewRepository(handle)
	txRepo := transactions.NewRepository(handle)

	template, err := chart.Default()
	if err != nil {
		return err
	}
	seeded, err := chart.NewSeeder(commodityRepo, accountRepo).SeedIfEmpty(ctx, template)
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("seeded default chart of accounts")
	}

	settings := slots.NewSettings(slotRepo)
	accountService := accounts.NewService(accountRepo)
	txService := transactions.NewService(txRepo, accountRepo, commodityRepo)
	balanceService := balances.NewService(balances.NewRepository(handle))

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		AccountsHandler:     accounts.NewHandler(logger, accountService),
		CommoditiesHandler:  commodities.NewHandler(logger, commodityRepo),
		BalancesHandler:     balances.NewHandler(logger, balanceService),
		TransactionsHandler: transactions.NewHandler(logger, txService, settings),
		SettingsHandler:     slots.NewHandler(logger, settings),
		ExportHandler:       export.NewHandler(logger, txService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr), slog.String("book", cfg.BookPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
