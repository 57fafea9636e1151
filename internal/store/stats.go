package store

import (
	"context"
	"time"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/shopspring/decimal"
)

// StatusCount is one row of a GROUP BY status query.
type StatusCount struct {
	Status string
	Count  int64
}

// PaidAmount is the TTC amount of one paid invoice.
type PaidAmount struct {
	CreatedAt  time.Time
	MontantTTC decimal.Decimal
}

// CountRows counts every row of the model's table.
func (s *Store) CountRows(ctx context.Context, model any) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(model).Count(&n).Error; err != nil {
		return 0, translate(err, "stats", "count", nil)
	}
	return n, nil
}

// CountByStatus groups the model's rows by status.
func (s *Store) CountByStatus(ctx context.Context, model any) (map[string]int64, error) {
	var rows []StatusCount
	err := s.conn(ctx).Model(model).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "stats", "status", nil)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

// PaidAmounts lists the amounts of PAID invoices created in [from, to). A zero
// bound is open. clientID narrows to one client when non-nil.
func (s *Store) PaidAmounts(ctx context.Context, from, to time.Time, clientID *uint) ([]PaidAmount, error) {
	q := s.conn(ctx).Model(&models.Invoice{}).
		Select("created_at, montant_ttc").
		Where("status = ?", models.InvoiceStatusPaid)
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	var rows []PaidAmount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, translate(err, "stats", "revenue", nil)
	}
	return rows, nil
}

// CountForClient counts the model's rows belonging to the client.
func (s *Store) CountForClient(ctx context.Context, model any, clientID uint) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(model).Where("client_id = ?", clientID).Count(&n).Error; err != nil {
		return 0, translate(err, "stats", "client_id", clientID)
	}
	return n, nil
}
