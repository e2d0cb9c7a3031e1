package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/fintrack/fintrack_service/internal/api/routes"
	"github.com/fintrack/fintrack_service/internal/domain/services/category"
	"github.com/fintrack/fintrack_service/internal/infrastructure/config"
	"github.com/fintrack/fintrack_service/internal/infrastructure/database"
	"github.com/fintrack/fintrack_service/internal/infrastructure/di"
	"github.com/fintrack/fintrack_service/pkg/graceful"
	"github.com/fintrack/fintrack_service/pkg/logger"
	"github.com/fintrack/fintrack_service/pkg/metrics"
	"github.com/fintrack/fintrack_service/pkg/tracing"
)

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.Environment), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	tracingShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		CollectorURL: cfg.Tracing.CollectorURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Tracing.SampleRate,
		Insecure:     cfg.Tracing.Insecure,
	}, log.Zap())
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := di.NewContainer(ctx, cfg, log)
	if err != nil {
		_ = tracingShutdown(context.Background())
		return fmt.Errorf("failed to create DI container: %w", err)
	}

	if container.ReconciliationWorker != nil {
		if err := container.ReconciliationWorker.Start(); err != nil {
			_ = container.Close()
			_ = tracingShutdown(context.Background())
			return fmt.Errorf("failed to start reconciliation worker: %w", err)
		}
	}

	router := routes.SetupRoutes(container)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	shutdown := graceful.NewShutdownManager(server, time.Duration(cfg.Server.ShutdownTimeout)*time.Second, log)
	shutdown.Register("logger", graceful.CloserFunc(func() error {
		_ = log.Sync()
		return nil
	}))
	shutdown.Register("tracer", graceful.CloserFunc(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return tracingShutdown(ctx)
	}))
	shutdown.Register("container", container)

	if container.DB != nil {
		stop := make(chan struct{})
		shutdown.Register("db-stats", graceful.CloserFunc(func() error {
			close(stop)
			return nil
		}))
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					metrics.DatabaseConnectionsGauge.Set(float64(container.DB.Stats().OpenConnections))
				case <-stop:
					return
				}
			}
		}()
	}

	go func() {
		log.Info("Starting server",
			"addr", server.Addr,
			"environment", cfg.Environment,
			"storage", cfg.Storage.Driver,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	shutdown.WaitForShutdown()
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.NewConnection(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			if err := database.RunMigrations(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("Database migrations applied")
			return nil
		},
	}
}

func seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-categories",
		Short: "Upsert the default category catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			container, err := di.NewContainer(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create DI container: %w", err)
			}
			defer container.Close()

			n, err := container.CategoryService.Seed(cmd.Context(), category.DefaultCategories())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories\n", n)
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	var correct bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare every wallet and budget with the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			container, err := di.NewContainer(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("failed to create DI container: %w", err)
			}
			defer container.Close()

			summary, err := container.ReconciliationService.ReconcileAll(cmd.Context(), correct)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked=%d drifted=%d corrected=%d failed=%d\n",
				summary.Checked, summary.Drifted, summary.Corrected, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d users failed to reconcile", summary.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&correct, "correct", false, "overwrite drifted totals with the recomputed values")
	return cmd
}
