package services

import (
	"context"
	"time"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/store"
	"github.com/shopspring/decimal"
)

// Overview is the dashboard summary.
type Overview struct {
	Clients          int64            `json:"clients"`
	Products         int64            `json:"products"`
	Quotes           int64            `json:"quotes"`
	Invoices         int64            `json:"invoices"`
	QuotesByStatus   map[string]int64 `json:"quotes_by_status"`
	InvoicesByStatus map[string]int64 `json:"invoices_by_status"`
	Revenue          Revenue          `json:"revenue"`
}

// Revenue sums the TTC amount of PAID invoices.
type Revenue struct {
	Total decimal.Decimal `json:"total"`
	Year  decimal.Decimal `json:"year"`
	Month decimal.Decimal `json:"month"`
}

// MonthlyRevenue is the revenue of one calendar month.
type MonthlyRevenue struct {
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ClientStats summarises the activity of one client.
type ClientStats struct {
	ClientID uint            `json:"client_id"`
	Quotes   int64           `json:"quotes"`
	Invoices int64           `json:"invoices"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type StatsService struct {
	base
}

func NewStatsService(st *store.Store, opts ...Option) *StatsService {
	return &StatsService{base: newBase(st, opts)}
}

func (s *StatsService) Overview(ctx context.Context) (out *Overview, err error) {
	ctx, span := s.startSpan(ctx, "StatsService.Overview")
	defer func() { endSpan(span, err) }()

	out = &Overview{}
	if out.Clients, err = s.store.CountRows(ctx, &models.Client{}); err != nil {
		return nil, err
	}
	if out.Products, err = s.store.CountRows(ctx, &models.Product{}); err != nil {
		return nil, err
	}
	if out.QuotesByStatus, err = s.store.CountByStatus(ctx, &models.Quote{}); err != nil {
		return nil, err
	}
	if out.InvoicesByStatus, err = s.store.CountByStatus(ctx, &models.Invoice{}); err != nil {
		return nil, err
	}
	for _, n := range out.QuotesByStatus {
		out.Quotes += n
	}
	for _, n := range out.InvoicesByStatus {
		out.Invoices += n
	}

	now := s.clock()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if out.Revenue.Total, err = s.Revenue(ctx, time.Time{}, time.Time{}, nil); err != nil {
		return nil, err
	}
	if out.Revenue.Year, err = s.Revenue(ctx, yearStart, yearStart.AddDate(1, 0, 0), nil); err != nil {
		return nil, err
	}
	if out.Revenue.Month, err = s.Revenue(ctx, monthStart, monthStart.AddDate(0, 1, 0), nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Revenue sums the TTC of PAID invoices created in [from, to). Zero bounds are
// open; clientID narrows to one client.
func (s *StatsService) Revenue(ctx context.Context, from, to time.Time, clientID *uint) (decimal.Decimal, error) {
	rows, err := s.store.PaidAmounts(ctx, from, to, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.MontantTTC)
	}
	return total, nil
}

// MonthlyRevenue returns twelve buckets, January first, for year.
func (s *StatsService) MonthlyRevenue(ctx context.Context, year int) ([]MonthlyRevenue, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.store.PaidAmounts(ctx, from, from.AddDate(1, 0, 0), nil)
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyRevenue, 12)
	for i := range out {
		out[i] = MonthlyRevenue{Month: i + 1, Revenue: decimal.Zero}
	}
	for _, r := range rows {
		m := r.CreatedAt.UTC().Month()
		out[m-1].Revenue = out[m-1].Revenue.Add(r.MontantTTC)
	}
	return out, nil
}

func (s *StatsService) Client(ctx context.Context, clientID uint) (*ClientStats, error) {
	if err := s.store.ClientExists(ctx, clientID); err != nil {
		return nil, err
	}
	out := &ClientStats{ClientID: clientID}
	var err error
	if out.Quotes, err = s.store.CountForClient(ctx, &models.Quote{}, clientID); err != nil {
		return nil, err
	}
	if out.Invoices, err = s.store.CountForClient(ctx, &models.Invoice{}, clientID); err != nil {
		return nil, err
	}
	if out.Revenue, err = s.Revenue(ctx, time.Time{}, time.Time{}, &clientID); err != nil {
		return nil, err
	}
	return out, nil
}
