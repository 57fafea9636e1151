package services

import (
	"context"
	"time"

	"github.com/diewo77/go-devis/internal/events"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/store"
	"github.com/diewo77/go-devis/validation"
	"github.com/sirupsen/logrus"
)

// InvoiceInput is the payload of a direct invoice creation.
type InvoiceInput struct {
	ClientID      uint
	OriginQuoteID *uint
	Lines         []models.LineInput
	PaymentMethod *models.PaymentMethod
}

// InvoiceUpdate overwrites the given fields. Nil fields are left untouched.
type InvoiceUpdate struct {
	Status        *models.InvoiceStatus
	PaymentMethod *models.PaymentMethod
}

type InvoiceService struct {
	base
}

func NewInvoiceService(st *store.Store, opts ...Option) *InvoiceService {
	return &InvoiceService{base: newBase(st, opts)}
}

func invoiceNext(inv *models.Invoice, action models.InvoiceAction) (models.InvoiceStatus, error) {
	next, ok := models.InvoiceTransitions.Next(inv.Status, action)
	if !ok {
		return "", &models.StateError{Entity: "invoice", ID: inv.ID, Status: string(inv.Status), Action: string(action)}
	}
	return next, nil
}

func checkPaymentMethod(pm *models.PaymentMethod) error {
	if pm != nil && !pm.Valid() {
		return validation.Violations{"payment_method": "invalid_value"}
	}
	return nil
}

// Create registers a new UNPAID invoice. An origin quote must exist but its
// status is not checked here.
func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput) (inv *models.Invoice, err error) {
	ctx, span := s.startSpan(ctx, "InvoiceService.Create")
	defer func() { endSpan(span, err) }()

	err = s.numbered(ctx, models.KindInvoice, func(tx *store.Store, number string, at time.Time) error {
		priced, err := buildLines(ctx, tx, in.Lines)
		if err != nil {
			return err
		}
		lines := make([]models.InvoiceLine, len(priced))
		for i := range priced {
			lines[i] = models.InvoiceLine{ProductID: in.Lines[i].ProductID, LinePricing: priced[i]}
		}
		inv = &models.Invoice{
			Number:        number,
			ClientID:      in.ClientID,
			OriginQuoteID: in.OriginQuoteID,
			CreatedAt:     at,
			PaymentMethod: in.PaymentMethod,
			Lines:         lines,
		}
		return s.insert(ctx, tx, inv)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("number", inv.Number).Info("invoice created")
	s.publish(ctx, events.New(events.InvoiceCreated, inv.ID, inv.Number, inv.CreatedAt, invoiceEventData(inv)))
	return s.store.GetInvoice(ctx, inv.ID)
}

// insert is the single invoice creation path, shared with the conversion. The
// caller sets number, creation time and lines; totals are recomputed here.
func (s *InvoiceService) insert(ctx context.Context, tx *store.Store, inv *models.Invoice) error {
	if err := checkPaymentMethod(inv.PaymentMethod); err != nil {
		return err
	}
	if err := tx.ClientExists(ctx, inv.ClientID); err != nil {
		return err
	}
	if inv.OriginQuoteID != nil {
		if err := tx.QuoteExists(ctx, *inv.OriginQuoteID); err != nil {
			return err
		}
	}
	inv.Status = models.InvoiceStatusUnpaid
	inv.SetLines(inv.Lines)
	return tx.CreateInvoice(ctx, inv)
}

// Update overwrites status and payment method without consulting the
// transition table. Changes the table would reject are logged.
func (s *InvoiceService) Update(ctx context.Context, id uint, in InvoiceUpdate) (inv *models.Invoice, err error) {
	ctx, span := s.startSpan(ctx, "InvoiceService.Update")
	defer func() { endSpan(span, err) }()

	v := make(validation.Violations)
	if in.Status != nil && !in.Status.Valid() {
		v["status"] = "invalid_value"
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		v["payment_method"] = "invalid_value"
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		cur, err := tx.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		if in.Status != nil && *in.Status != cur.Status {
			if !reachable(cur.Status, *in.Status) {
				s.log.WithFields(logrus.Fields{
					"invoice": cur.Number,
					"from":    cur.Status,
					"to":      *in.Status,
				}).Warn("invoice status overwritten outside the transition table")
			}
			cur.Status = *in.Status
			if cur.Status == models.InvoiceStatusPaid && cur.PaidAt == nil {
				at := s.clock()
				cur.PaidAt = &at
			}
		}
		if in.PaymentMethod != nil {
			cur.PaymentMethod = in.PaymentMethod
		}
		cur.UpdatedAt = s.clock()
		return tx.SaveInvoiceState(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetInvoice(ctx, id)
}

// reachable reports whether some guarded action leads from one status to the other.
func reachable(from, to models.InvoiceStatus) bool {
	for _, a := range models.InvoiceActions {
		if next, ok := models.InvoiceTransitions.Next(from, a); ok && next == to {
			return true
		}
	}
	return false
}

// MarkPaid settles an invoice that is not cancelled, recording the payment
// method when given.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uint, pm *models.PaymentMethod) (inv *models.Invoice, err error) {
	ctx, span := s.startSpan(ctx, "InvoiceService.MarkPaid")
	defer func() { endSpan(span, err) }()

	if err := checkPaymentMethod(pm); err != nil {
		return nil, err
	}
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		cur, err := tx.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		next, err := invoiceNext(cur, models.InvoiceActionMarkPaid)
		if err != nil {
			return err
		}
		now := s.clock()
		cur.Status = next
		if pm != nil {
			cur.PaymentMethod = pm
		}
		if cur.PaidAt == nil {
			cur.PaidAt = &now
		}
		cur.UpdatedAt = now
		inv = cur
		return tx.SaveInvoiceState(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.InvoicePaid, inv.ID, inv.Number, s.clock(), invoiceEventData(inv)))
	return s.store.GetInvoice(ctx, id)
}

// Cancel cancels an invoice that is not paid.
func (s *InvoiceService) Cancel(ctx context.Context, id uint) (inv *models.Invoice, err error) {
	ctx, span := s.startSpan(ctx, "InvoiceService.Cancel")
	defer func() { endSpan(span, err) }()

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		cur, err := tx.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		next, err := invoiceNext(cur, models.InvoiceActionCancel)
		if err != nil {
			return err
		}
		cur.Status = next
		cur.UpdatedAt = s.clock()
		inv = cur
		return tx.SaveInvoiceState(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.InvoiceCancelled, inv.ID, inv.Number, s.clock(), invoiceEventData(inv)))
	return s.store.GetInvoice(ctx, id)
}

// Delete removes an invoice and its lines whatever its status.
func (s *InvoiceService) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := s.startSpan(ctx, "InvoiceService.Delete")
	defer func() { endSpan(span, err) }()

	return s.store.Transaction(ctx, func(tx *store.Store) error {
		cur, err := tx.LockInvoice(ctx, id)
		if err != nil {
			return err
		}
		if _, err := invoiceNext(cur, models.InvoiceActionDelete); err != nil {
			return err
		}
		return tx.DeleteInvoice(ctx, id)
	})
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

func (s *InvoiceService) ByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	return s.store.InvoiceByNumber(ctx, number)
}

func (s *InvoiceService) ByClient(ctx context.Context, clientID uint) ([]models.Invoice, error) {
	return s.store.FindInvoices(ctx, store.InvoiceFilter{ClientID: &clientID})
}

func (s *InvoiceService) ByStatus(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	return s.store.FindInvoices(ctx, store.InvoiceFilter{Status: &status})
}

func (s *InvoiceService) List(ctx context.Context) ([]models.Invoice, error) {
	return s.store.FindInvoices(ctx, store.InvoiceFilter{})
}

func invoiceEventData(inv *models.Invoice) map[string]any {
	data := map[string]any{
		"client_id":   inv.ClientID,
		"status":      inv.Status,
		"montant_ttc": inv.MontantTTC.StringFixed(2),
	}
	if inv.OriginQuoteID != nil {
		data["origin_quote_id"] = *inv.OriginQuoteID
	}
	if inv.PaymentMethod != nil {
		data["payment_method"] = *inv.PaymentMethod
	}
	return data
}
