package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-devis/internal/config"
	"github.com/diewo77/go-devis/internal/db"
	"github.com/diewo77/go-devis/internal/events"
	"github.com/diewo77/go-devis/internal/numbering"
	"github.com/diewo77/go-devis/internal/observability"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("tracing shutdown")
		}
	}()

	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		return err
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			return err
		}
		log.Info("migrations completed successfully")
		return nil
	}
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("seeding completed successfully")
		return nil
	}

	if cfg.App.Migrations || cfg.Database.Driver == "sqlite" {
		if err := migrate(cfg, dbConn); err != nil {
			return err
		}
		log.Info("migrations completed")
	}
	if err := db.CheckSchema(dbConn); err != nil {
		return err
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	opts, closeAll := integrations(ctx, cfg, log)
	defer closeAll()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(dbConn, log, opts...),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "dev": cfg.App.Dev}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("error during shutdown")
	}
	log.Info("server stopped gracefully")
	return nil
}

// migrate applies the SQL migrations on postgres when MIGRATIONS=1 and falls
// back to AutoMigrate otherwise.
func migrate(cfg *config.Config, dbConn *gorm.DB) error {
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		if err := db.MigrateSQL(cfg.App.MigrationsDir, cfg.Database.URL()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		return nil
	}
	if err := db.Migrate(dbConn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// integrations enables the optional redis numbering lock and kafka publisher.
// A redis server that does not answer is logged and skipped.
func integrations(ctx context.Context, cfg *config.Config, log *logrus.Logger) ([]services.Option, func()) {
	var (
		opts    []services.Option
		closers []func() error
	)
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			config.LogError(log, "main", "integrations", "redis unavailable, numbering lock disabled",
				map[string]any{"address": cfg.Redis.Address}, err)
			_ = rdb.Close()
		} else {
			opts = append(opts, services.WithLocker(numbering.NewRedisLocker(rdb, cfg.Redis.LockTTL)))
			closers = append(closers, rdb.Close)
			log.WithField("address", cfg.Redis.Address).Info("numbering lock enabled")
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		opts = append(opts, services.WithPublisher(pub))
		closers = append(closers, pub.Close)
		log.WithFields(logrus.Fields{"brokers": cfg.Kafka.Brokers, "topic": cfg.Kafka.Topic}).Info("document events enabled")
	}
	return opts, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.WithError(err).Warn("close integration")
			}
		}
	}
}
