package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatali-fataliyev/budget_insight/api"
	"github.com/fatali-fataliyev/budget_insight/internal/budget"
	"github.com/fatali-fataliyev/budget_insight/internal/config"
	"github.com/fatali-fataliyev/budget_insight/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insight/internal/jobs"
	"github.com/fatali-fataliyev/budget_insight/internal/storage"
	"github.com/fatali-fataliyev/budget_insight/internal/tax"
	"github.com/fatali-fataliyev/budget_insight/logging"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Content-Type", api.TraceHeader},
	ExposedHeaders:   []string{api.TraceHeader},
	AllowCredentials: true,
})

func main() {
	if err := run(); err != nil {
		logging.Logger.Errorf("application stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Init(cfg.LogLevel, cfg.AppEnv, cfg.LogDir); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	logging.Logger.Info("application starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	logging.Logger.Infof("using %s storage", store.GetStorageType())

	schedule := tax.DefaultSchedule()
	if cfg.TaxScheduleFile != "" {
		schedule, err = tax.LoadSchedule(cfg.TaxScheduleFile)
		if err != nil {
			return err
		}
		logging.Logger.Infof("tax schedule loaded from %s", cfg.TaxScheduleFile)
	}

	bt := budget.NewBudgetTracker(store, tax.NewCalculator(schedule))

	if _, err := bt.Refresh(contextutil.WithTraceID(ctx, "")); err != nil {
		logging.Logger.Warnf("initial refresh failed: %v", err)
	}

	scheduler := cron.New()
	if _, err := jobs.RegisterSnapshotJob(scheduler, cfg.SnapshotCron, bt); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsConf.Handler(api.NewApi(bt).Routes()),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Logger.Infof("Starting server on port: %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	switch cfg.StorageType {
	case config.StorageMySQL:
		db, err := storage.Init(ctx, storage.MySQLConfig{
			User:     cfg.DBUser,
			Password: cfg.DBPass,
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			Name:     cfg.DBName,
			FullDSN:  cfg.FullDSN,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return storage.NewStore(storage.NewMySQLStorage(db)), nil
	case config.StorageSQLite:
		sqlite, err := storage.NewSQLiteStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return storage.NewStore(sqlite), nil
	default:
		return storage.NewStore(storage.NewInMemoryStorage()), nil
	}
}
