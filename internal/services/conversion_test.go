package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-devis/internal/events"
	"github.com/diewo77/go-devis/internal/models"
	"gorm.io/gorm"
)

func TestConvertHappyPath(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	q := e.validatedQuote(t, line(e.product.ID, 4))

	inv, err := e.conversion.Convert(ctx, q.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if inv.OriginQuoteID == nil || *inv.OriginQuoteID != q.ID || inv.ClientID != q.ClientID {
		t.Fatalf("invoice does not reference the quote: %+v", inv)
	}
	if inv.Status != models.InvoiceStatusUnpaid || inv.Number != "FAC-2025-0001" {
		t.Fatalf("unexpected invoice %s %s", inv.Number, inv.Status)
	}
	mustEqual(t, "ht", inv.MontantHT, q.TotalHT)
	mustEqual(t, "tva", inv.MontantTVA, q.TotalTVA)
	mustEqual(t, "ttc", inv.MontantTTC, q.TotalTTC)

	if got := e.stock(t, e.product.ID); got != 6 {
		t.Fatalf("stock: got %d want 6", got)
	}
	after, _ := e.quotes.Get(ctx, q.ID)
	if after.Status != models.QuoteStatusConverted {
		t.Fatalf("quote status: %s", after.Status)
	}

	types := e.events.types()
	if len(types) != 2 || types[0] != events.InvoiceCreated || types[1] != events.QuoteConverted {
		t.Fatalf("events: %v", types)
	}
}

func TestConvertStockGuard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	q := e.validatedQuote(t, line(e.product.ID, 11))

	_, err := e.conversion.Convert(ctx, q.ID)
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if errors.Is(err, models.ErrInconsistent) {
		t.Fatalf("pre-flight shortfall is not an inconsistency")
	}
	var se *models.StockError
	if !errors.As(err, &se) || se.Available != 10 || se.Requested != 11 || se.ProductName != e.product.Name {
		t.Fatalf("stock error details: %+v", se)
	}

	var invoices int64
	e.db.Model(&models.Invoice{}).Count(&invoices)
	if invoices != 0 {
		t.Fatalf("no invoice expected, got %d", invoices)
	}
	after, _ := e.quotes.Get(ctx, q.ID)
	if after.Status != models.QuoteStatusValidated {
		t.Fatalf("quote status changed to %s", after.Status)
	}
	if got := e.stock(t, e.product.ID); got != 10 {
		t.Fatalf("stock changed to %d", got)
	}
	if len(e.events.types()) != 0 {
		t.Fatalf("no event expected: %v", e.events.types())
	}
}

func TestConvertStockGuardSumsRepeatedProduct(t *testing.T) {
	e := newEnv(t)
	q := e.validatedQuote(t, line(e.product.ID, 6), line(e.product.ID, 6))

	_, err := e.conversion.Convert(context.Background(), q.ID)
	var se *models.StockError
	if !errors.As(err, &se) || se.Requested != 12 {
		t.Fatalf("expected a shortfall for 12 units, got %v", err)
	}
	if errors.Is(err, models.ErrInconsistent) {
		t.Fatalf("must be caught before the invoice is written")
	}
}

func TestConvertRequiresValidated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	q, _ := e.quotes.Create(ctx, QuoteInput{ClientID: e.client.ID, Lines: []models.LineInput{line(e.product.ID, 1)}})

	if _, err := e.conversion.Convert(ctx, q.ID); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("in-progress: expected invalid state, got %v", err)
	}
	if _, err := e.conversion.Convert(ctx, 999); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("missing: expected not found, got %v", err)
	}
	if _, err := e.quotes.Cancel(ctx, q.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := e.conversion.Convert(ctx, q.ID); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("cancelled: expected invalid state, got %v", err)
	}
}

func TestConvertCopiesPriceSnapshot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	other := e.newProduct(t, "SKU2", "40.00", 3)
	q := e.validatedQuote(t,
		models.LineInput{ProductID: e.product.ID, Quantity: 2, UnitPriceHT: decPtr("80.00"), TaxRate: decPtr("5.5")},
		line(other.ID, 3),
	)

	// catalog prices move after the quote was priced
	e.db.Model(&models.Product{}).Where("1 = 1").Update("unit_price_ht", dec("150.00"))

	inv, err := e.conversion.Convert(ctx, q.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	inv, err = e.invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(inv.Lines) != len(q.Lines) {
		t.Fatalf("lines: %d want %d", len(inv.Lines), len(q.Lines))
	}
	for i, ql := range q.Lines {
		il := inv.Lines[i]
		if il.ProductID != ql.ProductID || il.Quantity != ql.Quantity {
			t.Fatalf("line %d: product/qty mismatch %+v vs %+v", i, il, ql)
		}
		mustEqual(t, "unit price", il.UnitPriceHT, ql.UnitPriceHT)
		mustEqual(t, "tax rate", il.TaxRate.Decimal, ql.TaxRate.Decimal)
		mustEqual(t, "line ttc", il.TotalLineTTC, ql.TotalLineTTC)
	}
	mustEqual(t, "ttc", inv.MontantTTC, dec("168.80").Add(dec("144.00")))
	if got := e.stock(t, other.ID); got != 0 {
		t.Fatalf("stock of second product: %d", got)
	}
}

func TestConvertLateShortfallIsInconsistentAndRolledBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	q := e.validatedQuote(t, line(e.product.ID, 4))

	// drain the stock once the invoice row is written, between the
	// pre-flight check and the decrement
	err := e.db.Callback().Create().After("gorm:create").Register("test:drain_stock", func(tx *gorm.DB) {
		if tx.Statement.Table == "invoices" {
			tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE products SET stock = 0")
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = e.conversion.Convert(ctx, q.ID)
	if !errors.Is(err, models.ErrInconsistent) {
		t.Fatalf("expected inconsistency, got %v", err)
	}
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatalf("cause must be preserved, got %v", err)
	}

	var invoices int64
	e.db.Model(&models.Invoice{}).Count(&invoices)
	if invoices != 0 {
		t.Fatalf("invoice must be rolled back, found %d", invoices)
	}
	if got := e.stock(t, e.product.ID); got != 10 {
		t.Fatalf("stock must be rolled back, got %d", got)
	}
	after, _ := e.quotes.Get(ctx, q.ID)
	if after.Status != models.QuoteStatusValidated {
		t.Fatalf("quote status: %s", after.Status)
	}
}

func TestCreateRetriesOnceOnNumberConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	attempts := 0
	collideOn := 1
	err := e.db.Callback().Create().Before("gorm:create").Register("test:steal_number", func(tx *gorm.DB) {
		q, ok := tx.Statement.Dest.(*models.Quote)
		if !ok {
			return
		}
		attempts++
		if attempts <= collideOn {
			tx.Session(&gorm.Session{NewDB: true}).Exec(
				"INSERT INTO quotes (created_at, updated_at, number, client_id, status, total_ht, total_tva, total_ttc) VALUES (?, ?, ?, ?, ?, 0, 0, 0)",
				e.now.AddDate(-1, 0, 0), e.now, q.Number, e.client.ID, models.QuoteStatusCancelled)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	q, err := e.quotes.Create(ctx, QuoteInput{ClientID: e.client.ID})
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if attempts != 2 || q.Number != "DEV-2025-0001" {
		t.Fatalf("attempts=%d number=%s", attempts, q.Number)
	}

	attempts, collideOn = 0, 2
	if _, err := e.quotes.Create(ctx, QuoteInput{ClientID: e.client.ID}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict after the retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly one retry, got %d attempts", attempts)
	}
}
