package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cvc/cvc/internal/config"
	"github.com/cvc/cvc/internal/domain/audit"
	"github.com/cvc/cvc/internal/domain/catalogue"
	"github.com/cvc/cvc/internal/domain/lookup"
	"github.com/cvc/cvc/internal/domain/settings"
	"github.com/cvc/cvc/internal/platform/db"
	"github.com/cvc/cvc/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cvc-server",
		Short: "Canadian Vaccine Catalogue sync service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the catalogue API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one catalogue sync and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			syncer := newSyncer(cfg, pool)
			report, err := syncer.Run(ctx)
			if err != nil {
				return err
			}
			logger.Info().
				Int("immunizations", report.Immunizations).
				Int("medications", report.Medications).
				Int("lot_numbers", report.LotNumbers).
				Int("lookup_items", report.LookupItems).
				Msg("sync finished")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "migrations", "migrations directory")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "migrations", "migrations directory")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newSyncer(cfg *config.Config, pool *pgxpool.Pool) *catalogue.Syncer {
	client := catalogue.NewClient(catalogue.ClientOptions{
		Accept:     cfg.CVCAccept,
		AppDesc:    cfg.CVCAppDesc,
		BundlePath: cfg.CVCBundlePath,
		DumpFile:   cfg.CVCDumpFile,
		Timeout:    cfg.FetchTimeout,
	})
	return catalogue.NewSyncer(
		client,
		catalogue.NewImmunizationRepoPG(pool),
		catalogue.NewMedicationRepoPG(pool),
		lookup.NewService(lookup.NewListRepoPG(pool)),
		settings.NewService(settings.NewPropertyRepoPG(pool)),
		audit.NewService(audit.NewEntryRepoPG(pool)),
		cfg.CVCBaseURL,
	)
}

func runServer() error {
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	syncer := newSyncer(cfg, pool)
	propsSvc := settings.NewService(settings.NewPropertyRepoPG(pool))
	immRepo := catalogue.NewImmunizationRepoPG(pool)
	medRepo := catalogue.NewMedicationRepoPG(pool)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	catalogue.NewHandler(syncer, immRepo, medRepo, propsSvc).RegisterRoutes(apiV1)

	// Optional background sync loop; the run lock inside the syncer keeps
	// a ticker firing during a manual run from starting a second one.
	stopTicker := make(chan struct{})
	if cfg.SyncInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.SyncInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if _, err := syncer.Run(context.Background()); err != nil {
						logger.Error().Err(err).Msg("scheduled sync failed")
					}
				case <-stopTicker:
					return
				}
			}
		}()
		logger.Info().Dur("interval", cfg.SyncInterval).Msg("background sync enabled")
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	close(stopTicker)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
