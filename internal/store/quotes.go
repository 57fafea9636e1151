package store

import (
	"context"

	"github.com/diewo77/go-devis/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuoteFilter narrows FindQuotes. Nil fields match everything.
type QuoteFilter struct {
	Status   *models.QuoteStatus
	ClientID *uint
}

func orderedLines(db *gorm.DB) *gorm.DB { return db.Order("position, id") }

func withQuoteDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Client").Preload("Lines", orderedLines).Preload("Lines.Product")
}

// CreateQuote inserts the quote header then its lines.
func (s *Store) CreateQuote(ctx context.Context, q *models.Quote) error {
	db := s.conn(ctx)
	if err := db.Omit(clause.Associations).Create(q).Error; err != nil {
		return translate(err, "quote", "number", q.Number)
	}
	return s.insertQuoteLines(db, q)
}

func (s *Store) insertQuoteLines(db *gorm.DB, q *models.Quote) error {
	if len(q.Lines) == 0 {
		return nil
	}
	for i := range q.Lines {
		q.Lines[i].ID = 0
		q.Lines[i].QuoteID = q.ID
	}
	return translate(db.Omit(clause.Associations).Create(&q.Lines).Error, "quote line", "quote_id", q.ID)
}

// GetQuote loads a quote with its client and ordered lines.
func (s *Store) GetQuote(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	if err := withQuoteDetails(s.conn(ctx)).First(&q, id).Error; err != nil {
		return nil, translate(err, "quote", "id", id)
	}
	return &q, nil
}

// GetQuoteSummary loads the quote header only.
func (s *Store) GetQuoteSummary(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	if err := s.conn(ctx).First(&q, id).Error; err != nil {
		return nil, translate(err, "quote", "id", id)
	}
	return &q, nil
}

// LockQuote loads a quote and its lines, locking the quote row until the
// surrounding transaction ends.
func (s *Store) LockQuote(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	if err := s.forUpdate(s.conn(ctx)).First(&q, id).Error; err != nil {
		return nil, translate(err, "quote", "id", id)
	}
	if err := orderedLines(s.conn(ctx)).Where("quote_id = ?", q.ID).Find(&q.Lines).Error; err != nil {
		return nil, translate(err, "quote line", "quote_id", id)
	}
	return &q, nil
}

func (s *Store) QuoteByNumber(ctx context.Context, number string) (*models.Quote, error) {
	var q models.Quote
	if err := withQuoteDetails(s.conn(ctx)).Where("number = ?", number).First(&q).Error; err != nil {
		return nil, translate(err, "quote", "number", number)
	}
	return &q, nil
}

// FindQuotes returns quote summaries, newest first.
func (s *Store) FindQuotes(ctx context.Context, f QuoteFilter) ([]models.Quote, error) {
	q := s.conn(ctx).Preload("Client")
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	var out []models.Quote
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "quote", "filter", f)
	}
	return out, nil
}

// ReplaceQuote overwrites the header and swaps the whole line set.
func (s *Store) ReplaceQuote(ctx context.Context, q *models.Quote) error {
	db := s.conn(ctx)
	if err := db.Where("quote_id = ?", q.ID).Delete(&models.QuoteLine{}).Error; err != nil {
		return translate(err, "quote line", "quote_id", q.ID)
	}
	res := db.Model(q).
		Select("client_id", "comment", "total_ht", "total_tva", "total_ttc", "status", "updated_at").
		Updates(q)
	if res.Error != nil {
		return translate(res.Error, "quote", "id", q.ID)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("quote", q.ID)
	}
	return s.insertQuoteLines(db, q)
}

// TransitionQuote sets status to `to` only if the quote is still in `from`.
// It returns false when the row did not match.
func (s *Store) TransitionQuote(ctx context.Context, id uint, from, to models.QuoteStatus) (bool, error) {
	res := s.conn(ctx).Model(&models.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translate(res.Error, "quote", "id", id)
	}
	return res.RowsAffected == 1, nil
}

// DeleteQuote removes the quote and its lines.
func (s *Store) DeleteQuote(ctx context.Context, id uint) error {
	db := s.conn(ctx)
	if err := db.Where("quote_id = ?", id).Delete(&models.QuoteLine{}).Error; err != nil {
		return translate(err, "quote line", "quote_id", id)
	}
	res := db.Delete(&models.Quote{}, id)
	if res.Error != nil {
		return translate(res.Error, "quote", "id", id)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("quote", id)
	}
	return nil
}
