package db

import (
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/go-devis/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 5

var passwordRe = regexp.MustCompile(`(password=)([^\s]+)`)

// Open connects to the configured database. Postgres connections are retried to
// give the server time to start. Driver errors are translated so that unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(cfg config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
		log.WithField("path", cfg.SQLitePath).Info("using sqlite database")
	case "postgres", "":
		dsn := cfg.DSN()
		dialector = postgres.Open(dsn)
		log.WithField("dsn", passwordRe.ReplaceAllString(dsn, `${1}***`)).Info("using postgres database")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.WithError(err).Warnf("database connection attempt %d/%d failed, retrying", i, connectAttempts)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		log.WithError(err).Warn("db connected but failed to install otelgorm plugin")
	}
	return db, nil
}
