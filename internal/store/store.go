// Package store is the gorm persistence layer for clients, products, quotes and
// invoices. Every method returns errors classified with the kinds declared in
// package models.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint failure.
const pgUniqueViolation = "23505"

// Store wraps a gorm handle. Inside Transaction the handle is the transaction.
type Store struct {
	db *gorm.DB
}

// New returns a store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn in a single database transaction. The transaction is
// rolled back when fn returns an error or panics, committed otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// forUpdate adds a row lock where the dialect supports it. SQLite serialises
// writers itself and rejects the FOR UPDATE syntax.
func (s *Store) forUpdate(q *gorm.DB) *gorm.DB {
	if s.db.Dialector.Name() == "postgres" {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// translate maps driver and gorm errors onto the model error kinds.
func translate(err error, entity, key string, value any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotFoundError{Entity: entity, Key: key, Value: value}
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s %s=%v: %w", entity, key, value, models.ErrConflict)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
