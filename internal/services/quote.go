package services

import (
	"context"
	"time"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/store"
)

// QuoteInput is the payload of quote creation and update. ClientID is ignored on update.
type QuoteInput struct {
	ClientID uint
	Comment  string
	Lines    []models.LineInput
}

type QuoteService struct {
	base
}

func NewQuoteService(st *store.Store, opts ...Option) *QuoteService {
	return &QuoteService{base: newBase(st, opts)}
}

// quoteNext applies action to q through the transition table.
func quoteNext(q *models.Quote, action models.QuoteAction) (models.QuoteStatus, error) {
	next, ok := models.QuoteTransitions.Next(q.Status, action)
	if !ok {
		return "", &models.StateError{Entity: "quote", ID: q.ID, Status: string(q.Status), Action: string(action)}
	}
	return next, nil
}

func quoteLines(priced []models.LinePricing, in []models.LineInput) []models.QuoteLine {
	lines := make([]models.QuoteLine, len(priced))
	for i := range priced {
		lines[i] = models.QuoteLine{ProductID: in[i].ProductID, LinePricing: priced[i]}
	}
	return lines
}

// Create registers a new IN_PROGRESS quote for an existing client.
func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (q *models.Quote, err error) {
	ctx, span := s.startSpan(ctx, "QuoteService.Create")
	defer func() { endSpan(span, err) }()

	err = s.numbered(ctx, models.KindQuote, func(tx *store.Store, number string, at time.Time) error {
		if err := tx.ClientExists(ctx, in.ClientID); err != nil {
			return err
		}
		priced, err := buildLines(ctx, tx, in.Lines)
		if err != nil {
			return err
		}
		q = &models.Quote{
			Number:    number,
			ClientID:  in.ClientID,
			CreatedAt: at,
			Status:    models.QuoteStatusInProgress,
			Comment:   in.Comment,
		}
		q.SetLines(quoteLines(priced, in.Lines))
		return tx.CreateQuote(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("number", q.Number).Info("quote created")
	return s.store.GetQuote(ctx, q.ID)
}

// Update replaces the comment and the whole line list of an IN_PROGRESS quote.
func (s *QuoteService) Update(ctx context.Context, id uint, in QuoteInput) (q *models.Quote, err error) {
	ctx, span := s.startSpan(ctx, "QuoteService.Update")
	defer func() { endSpan(span, err) }()

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		cur, err := tx.LockQuote(ctx, id)
		if err != nil {
			return err
		}
		if _, err := quoteNext(cur, models.QuoteActionUpdate); err != nil {
			return err
		}
		priced, err := buildLines(ctx, tx, in.Lines)
		if err != nil {
			return err
		}
		cur.Comment = in.Comment
		cur.UpdatedAt = s.clock()
		cur.SetLines(quoteLines(priced, in.Lines))
		return tx.ReplaceQuote(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetQuote(ctx, id)
}

// Validate moves an IN_PROGRESS quote to VALIDATED.
func (s *QuoteService) Validate(ctx context.Context, id uint) (*models.Quote, error) {
	return s.transition(ctx, "QuoteService.Validate", id, models.QuoteActionValidate)
}

// Cancel cancels any quote that was not converted. Cancelling twice is accepted.
func (s *QuoteService) Cancel(ctx context.Context, id uint) (*models.Quote, error) {
	return s.transition(ctx, "QuoteService.Cancel", id, models.QuoteActionCancel)
}

func (s *QuoteService) transition(ctx context.Context, spanName string, id uint, action models.QuoteAction) (q *models.Quote, err error) {
	ctx, span := s.startSpan(ctx, spanName)
	defer func() { endSpan(span, err) }()

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		cur, err := tx.LockQuote(ctx, id)
		if err != nil {
			return err
		}
		next, err := quoteNext(cur, action)
		if err != nil {
			return err
		}
		ok, err := tx.TransitionQuote(ctx, id, cur.Status, next)
		if err != nil {
			return err
		}
		if !ok {
			return &models.StateError{Entity: "quote", ID: id, Status: string(cur.Status), Action: string(action)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetQuote(ctx, id)
}

// Delete removes a quote and its lines unless it was converted.
func (s *QuoteService) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := s.startSpan(ctx, "QuoteService.Delete")
	defer func() { endSpan(span, err) }()

	return s.store.Transaction(ctx, func(tx *store.Store) error {
		cur, err := tx.LockQuote(ctx, id)
		if err != nil {
			return err
		}
		if _, err := quoteNext(cur, models.QuoteActionDelete); err != nil {
			return err
		}
		return tx.DeleteQuote(ctx, id)
	})
}

// Get returns the quote with its client and lines.
func (s *QuoteService) Get(ctx context.Context, id uint) (*models.Quote, error) {
	return s.store.GetQuote(ctx, id)
}

// Summary returns the quote header without lines.
func (s *QuoteService) Summary(ctx context.Context, id uint) (*models.Quote, error) {
	return s.store.GetQuoteSummary(ctx, id)
}

func (s *QuoteService) ByNumber(ctx context.Context, number string) (*models.Quote, error) {
	return s.store.QuoteByNumber(ctx, number)
}

func (s *QuoteService) ByClient(ctx context.Context, clientID uint) ([]models.Quote, error) {
	return s.store.FindQuotes(ctx, store.QuoteFilter{ClientID: &clientID})
}

func (s *QuoteService) ByStatus(ctx context.Context, status models.QuoteStatus) ([]models.Quote, error) {
	return s.store.FindQuotes(ctx, store.QuoteFilter{Status: &status})
}

func (s *QuoteService) List(ctx context.Context) ([]models.Quote, error) {
	return s.store.FindQuotes(ctx, store.QuoteFilter{})
}
