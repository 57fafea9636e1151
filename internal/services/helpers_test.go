package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/go-devis/internal/events"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// recorder keeps published events in memory.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type env struct {
	db         *gorm.DB
	store      *store.Store
	now        time.Time
	events     *recorder
	quotes     *QuoteService
	invoices   *InvoiceService
	conversion *ConversionService
	catalog    *CatalogService
	stats      *StatsService
	client     models.Client
	product    models.Product
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := setupTestDB(t)
	e := &env{
		db:     db,
		store:  store.New(db),
		now:    time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC),
		events: &recorder{},
	}
	logg := logrus.New()
	logg.SetOutput(io.Discard)
	opts := []Option{
		WithClock(func() time.Time { return e.now }),
		WithPublisher(e.events),
		WithLogger(logg),
	}
	e.quotes = NewQuoteService(e.store, opts...)
	e.invoices = NewInvoiceService(e.store, opts...)
	e.conversion = NewConversionService(e.store, e.invoices, opts...)
	e.catalog = NewCatalogService(e.store, opts...)
	e.stats = NewStatsService(e.store, opts...)

	e.client = models.Client{Name: "ClientCo", Email: "client@test", Active: true}
	if err := db.Create(&e.client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	e.product = e.newProduct(t, "SKU1", "100.00", 10)
	return e
}

func (e *env) newProduct(t *testing.T, code, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Code: code, Name: "Product " + code, UnitPriceHT: decimal.RequireFromString(price), Stock: stock, Active: true}
	if err := e.db.Create(&p).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	return p
}

func (e *env) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	if err := e.db.First(&p, id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return p.Stock
}

func line(productID uint, qty int) models.LineInput {
	return models.LineInput{ProductID: productID, Quantity: qty}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func mustEqual(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s: got %s want %s", name, got, want)
	}
}

func (e *env) validatedQuote(t *testing.T, lines ...models.LineInput) *models.Quote {
	t.Helper()
	ctx := context.Background()
	q, err := e.quotes.Create(ctx, QuoteInput{ClientID: e.client.ID, Lines: lines})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	q, err = e.quotes.Validate(ctx, q.ID)
	if err != nil {
		t.Fatalf("validate quote: %v", err)
	}
	return q
}
