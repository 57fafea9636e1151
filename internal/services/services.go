// Package services holds the quote and invoice lifecycles, the quote to invoice
// conversion and the catalog maintenance used by the HTTP handlers.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/diewo77/go-devis/internal/config"
	"github.com/diewo77/go-devis/internal/events"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/numbering"
	"github.com/diewo77/go-devis/internal/observability"
	"github.com/diewo77/go-devis/internal/store"
	"github.com/diewo77/go-devis/validation"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// createAttempts bounds document creation: the first try plus one retry with
// a fresh number after a uniqueness conflict.
const createAttempts = 2

// Option configures a service.
type Option func(*base)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithLocker serialises number generation, typically with a numbering.RedisLocker.
func WithLocker(l numbering.Locker) Option {
	return func(b *base) { b.locker = l }
}

// WithPublisher sends lifecycle events after commit.
func WithPublisher(p events.Publisher) Option {
	return func(b *base) { b.publisher = p }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *base) { b.log = l }
}

type base struct {
	store     *store.Store
	now       func() time.Time
	locker    numbering.Locker
	publisher events.Publisher
	log       logrus.FieldLogger
	tracer    trace.Tracer
}

func newBase(st *store.Store, opts []Option) base {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	b := base{
		store:     st,
		now:       time.Now,
		locker:    numbering.NopLocker{},
		publisher: events.Nop{},
		log:       silent,
		tracer:    otel.Tracer(observability.TracerName),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// clock returns the current time in UTC; numbering years are UTC years.
func (b *base) clock() time.Time {
	return b.now().UTC()
}

func (b *base) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// numbered runs create in a transaction with the next number of kind. The
// numbering lock is held for the whole attempt. A uniqueness conflict rolls the
// transaction back and retries once with a new number; a second conflict is
// returned as models.ErrConflict.
func (b *base) numbered(ctx context.Context, kind models.DocumentKind, create func(tx *store.Store, number string, at time.Time) error) error {
	at := b.clock()
	release, err := b.locker.Acquire(ctx, kind, at.Year())
	if err != nil {
		return err
	}
	defer func() {
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			b.log.WithError(rerr).WithField("key", numbering.Key(kind, at.Year())).Warn("numbering lock release failed")
		}
	}()

	for attempt := 1; ; attempt++ {
		err = b.store.Transaction(ctx, func(tx *store.Store) error {
			number, err := numbering.Next(ctx, tx, kind, at.Year())
			if err != nil {
				return err
			}
			return create(tx, number, at)
		})
		if !errors.Is(err, models.ErrConflict) || attempt >= createAttempts {
			return err
		}
		b.log.WithFields(logrus.Fields{"kind": kind, "attempt": attempt}).Warn("document number collision, retrying")
	}
}

// publish sends e and only logs a failure; the change is already committed.
func (b *base) publish(ctx context.Context, e events.Event) {
	if err := b.publisher.Publish(ctx, e); err != nil {
		config.LogError(b.log, "services", "publish", e.Type,
			map[string]any{"document_id": e.DocumentID, "number": e.Number}, err)
	}
}

// buildLines resolves the requested products and prices each line. The unit
// price is the catalog price unless overridden; the rate defaults to 20.00.
func buildLines(ctx context.Context, tx *store.Store, in []models.LineInput) ([]models.LinePricing, error) {
	v := make(validation.Violations)
	ids := make([]uint, 0, len(in))
	for i, l := range in {
		validation.PositiveInt(lineField(i, "quantity"), l.Quantity, v)
		if l.UnitPriceHT != nil {
			validation.NonNegativeDecimal(lineField(i, "unit_price_ht"), *l.UnitPriceHT, v)
		}
		ids = append(ids, l.ProductID)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	products, err := tx.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	priced := make([]models.LinePricing, len(in))
	for i, l := range in {
		price := products[l.ProductID].UnitPriceHT
		if l.UnitPriceHT != nil {
			price = *l.UnitPriceHT
		}
		priced[i] = models.NewLinePricing(l.Quantity, price, l.TaxRate)
	}
	return priced, nil
}

func lineField(i int, name string) string {
	return fmt.Sprintf("lines[%d].%s", i, name)
}
