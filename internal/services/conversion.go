package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/go-devis/internal/config"
	"github.com/diewo77/go-devis/internal/events"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/store"
)

// ConversionService turns a validated quote into an invoice.
type ConversionService struct {
	base
	invoices *InvoiceService
}

func NewConversionService(st *store.Store, invoices *InvoiceService, opts ...Option) *ConversionService {
	return &ConversionService{base: newBase(st, opts), invoices: invoices}
}

// Convert creates the invoice of a VALIDATED quote, consumes the stock of
// every line and marks the quote CONVERTED. Everything happens in one
// transaction: on any error nothing is persisted. Stock is checked before the
// invoice is written; a shortfall found afterwards, or any other failure once
// the invoice exists, is reported as a models.InconsistencyError.
func (s *ConversionService) Convert(ctx context.Context, quoteID uint) (inv *models.Invoice, err error) {
	ctx, span := s.startSpan(ctx, "ConversionService.Convert")
	defer func() { endSpan(span, err) }()

	var quoteNumber string
	err = s.numbered(ctx, models.KindInvoice, func(tx *store.Store, number string, at time.Time) error {
		q, err := tx.LockQuote(ctx, quoteID)
		if err != nil {
			return err
		}
		if _, err := quoteNext(q, models.QuoteActionConvert); err != nil {
			return err
		}
		quoteNumber = q.Number
		if err := checkStock(ctx, tx, q.Lines); err != nil {
			return err
		}

		inv = invoiceFromQuote(q, number, at)
		if err := s.invoices.insert(ctx, tx, inv); err != nil {
			return err
		}

		for _, l := range q.Lines {
			if err := tx.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
				return &models.InconsistencyError{Step: "stock decrement", Cause: err}
			}
		}
		ok, err := tx.TransitionQuote(ctx, q.ID, q.Status, models.QuoteStatusConverted)
		if err != nil {
			return &models.InconsistencyError{Step: "quote status update", Cause: err}
		}
		if !ok {
			return &models.InconsistencyError{
				Step:  "quote status update",
				Cause: &models.StateError{Entity: "quote", ID: q.ID, Status: string(q.Status), Action: string(models.QuoteActionConvert)},
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrInconsistent) {
			config.LogError(s.log, "services", "Convert", "conversion rolled back after invoice creation",
				map[string]any{"quote_id": quoteID}, err)
		}
		return nil, err
	}

	s.log.WithField("quote", quoteNumber).WithField("invoice", inv.Number).Info("quote converted")
	s.publish(ctx, events.New(events.InvoiceCreated, inv.ID, inv.Number, inv.CreatedAt, invoiceEventData(inv)))
	s.publish(ctx, events.New(events.QuoteConverted, quoteID, quoteNumber, inv.CreatedAt,
		map[string]any{"invoice_id": inv.ID, "invoice_number": inv.Number}))
	return s.invoices.Get(ctx, inv.ID)
}

// checkStock fails on the first product, in line order, whose current stock
// does not cover the total quantity requested for it by the quote.
func checkStock(ctx context.Context, tx *store.Store, lines []models.QuoteLine) error {
	ids := make([]uint, 0, len(lines))
	requested := make(map[uint]int, len(lines))
	for _, l := range lines {
		if _, seen := requested[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}
		requested[l.ProductID] += l.Quantity
	}
	products, err := tx.ProductsByID(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		p := products[id]
		if p.Stock < requested[id] {
			return &models.StockError{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: requested[id]}
		}
	}
	return nil
}

// invoiceFromQuote copies product, quantity, unit price and tax rate of every
// line. Totals are recomputed on insert.
func invoiceFromQuote(q *models.Quote, number string, at time.Time) *models.Invoice {
	lines := make([]models.InvoiceLine, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = models.InvoiceLine{
			ProductID: l.ProductID,
			LinePricing: models.LinePricing{
				Quantity:    l.Quantity,
				UnitPriceHT: l.UnitPriceHT,
				TaxRate:     l.TaxRate,
			},
		}
	}
	quoteID := q.ID
	return &models.Invoice{
		Number:        number,
		ClientID:      q.ClientID,
		OriginQuoteID: &quoteID,
		CreatedAt:     at,
		Lines:         lines,
	}
}
