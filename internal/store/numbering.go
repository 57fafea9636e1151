package store

import (
	"context"
	"time"

	"github.com/diewo77/go-devis/internal/models"
)

func documentModel(kind models.DocumentKind) any {
	if kind == models.KindInvoice {
		return &models.Invoice{}
	}
	return &models.Quote{}
}

// CountCreatedBetween counts the documents of kind created in [from, to).
func (s *Store) CountCreatedBetween(ctx context.Context, kind models.DocumentKind, from, to time.Time) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(documentModel(kind)).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&n).Error
	if err != nil {
		return 0, translate(err, string(kind), "created_at", from.Year())
	}
	return n, nil
}

// LastNumber returns the highest number starting with prefix, or "" when there
// is none. Longer numbers sort after shorter ones so 10000 follows 9999.
func (s *Store) LastNumber(ctx context.Context, kind models.DocumentKind, prefix string) (string, error) {
	var numbers []string
	err := s.conn(ctx).Model(documentModel(kind)).
		Where("number LIKE ?", prefix+"%").
		Order("LENGTH(number) DESC, number DESC").
		Limit(1).
		Pluck("number", &numbers).Error
	if err != nil {
		return "", translate(err, string(kind), "number", prefix)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}
