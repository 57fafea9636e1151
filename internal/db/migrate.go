package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-devis/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for all models.
func Migrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// MigrateSQL applies the versioned SQL migrations found in dir to the postgres
// database at url.
func MigrateSQL(dir, url string) error {
	m, err := migrate.New("file://"+dir, url)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CheckSchema fails when one of the core tables is missing after migration.
func CheckSchema(db *gorm.DB) error {
	for _, table := range []string{"clients", "products", "quotes", "quote_lines", "invoices", "invoice_lines"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
