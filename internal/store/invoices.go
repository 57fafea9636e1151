package store

import (
	"context"

	"github.com/diewo77/go-devis/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceFilter narrows FindInvoices. Nil fields match everything.
type InvoiceFilter struct {
	Status   *models.InvoiceStatus
	ClientID *uint
}

func withInvoiceDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Client").Preload("Lines", orderedLines).Preload("Lines.Product")
}

// CreateInvoice inserts the invoice header then its lines.
func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	db := s.conn(ctx)
	if err := db.Omit(clause.Associations).Create(inv).Error; err != nil {
		return translate(err, "invoice", "number", inv.Number)
	}
	if len(inv.Lines) == 0 {
		return nil
	}
	for i := range inv.Lines {
		inv.Lines[i].ID = 0
		inv.Lines[i].InvoiceID = inv.ID
	}
	return translate(db.Omit(clause.Associations).Create(&inv.Lines).Error, "invoice line", "invoice_id", inv.ID)
}

// GetInvoice loads an invoice with its client and ordered lines.
func (s *Store) GetInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := withInvoiceDetails(s.conn(ctx)).First(&inv, id).Error; err != nil {
		return nil, translate(err, "invoice", "id", id)
	}
	return &inv, nil
}

// LockInvoice loads the invoice header, locking the row until the surrounding
// transaction ends.
func (s *Store) LockInvoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.forUpdate(s.conn(ctx)).First(&inv, id).Error; err != nil {
		return nil, translate(err, "invoice", "id", id)
	}
	return &inv, nil
}

func (s *Store) InvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := withInvoiceDetails(s.conn(ctx)).Where("number = ?", number).First(&inv).Error; err != nil {
		return nil, translate(err, "invoice", "number", number)
	}
	return &inv, nil
}

// FindInvoices returns invoice summaries, newest first.
func (s *Store) FindInvoices(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	q := s.conn(ctx).Preload("Client")
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	var out []models.Invoice
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "invoice", "filter", f)
	}
	return out, nil
}

// SaveInvoiceState writes status, payment method and payment date.
func (s *Store) SaveInvoiceState(ctx context.Context, inv *models.Invoice) error {
	res := s.conn(ctx).Model(inv).
		Select("status", "payment_method", "paid_at", "updated_at").
		Updates(inv)
	if res.Error != nil {
		return translate(res.Error, "invoice", "id", inv.ID)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("invoice", inv.ID)
	}
	return nil
}

// DeleteInvoice removes the invoice and its lines.
func (s *Store) DeleteInvoice(ctx context.Context, id uint) error {
	db := s.conn(ctx)
	if err := db.Where("invoice_id = ?", id).Delete(&models.InvoiceLine{}).Error; err != nil {
		return translate(err, "invoice line", "invoice_id", id)
	}
	res := db.Delete(&models.Invoice{}, id)
	if res.Error != nil {
		return translate(res.Error, "invoice", "id", id)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("invoice", id)
	}
	return nil
}

// QuoteExists returns NotFound when no quote has the given id.
func (s *Store) QuoteExists(ctx context.Context, id uint) error {
	var n int64
	if err := s.conn(ctx).Model(&models.Quote{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err, "quote", "id", id)
	}
	if n == 0 {
		return models.NotFound("quote", id)
	}
	return nil
}
