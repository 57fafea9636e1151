package models

import (
	"time"

	"github.com/diewo77/go-devis/internal/pricing"
	"github.com/shopspring/decimal"
)

// Quote is a priced proposal to a client ("devis").
type Quote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Number is DEV-YYYY-NNNN, unique across all quotes.
	Number string `gorm:"size:20;not null;uniqueIndex" json:"number"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Lines []QuoteLine `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`

	TotalHT  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_ht"`
	TotalTVA decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_tva"`
	TotalTTC decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_ttc"`

	Status  QuoteStatus `gorm:"size:20;not null;index" json:"status"`
	Comment string      `gorm:"type:text" json:"comment,omitempty"`
}

// QuoteLine is one product row of a quote. QuoteID is maintained by Quote.SetLines.
type QuoteLine struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	QuoteID   uint     `gorm:"index;not null" json:"quote_id"`
	Position  int      `gorm:"not null;default:0" json:"position"`
	ProductID uint     `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	LinePricing
}

// SetLines replaces the whole line collection, attaches every line to q and
// recomputes the totals. Previous lines are dropped, never merged.
func (q *Quote) SetLines(lines []QuoteLine) {
	for i := range lines {
		lines[i].QuoteID = q.ID
		lines[i].Position = i + 1
	}
	q.Lines = lines
	q.RecalculateTotals()
}

// RecalculateTotals recomputes every line and the quote totals.
func (q *Quote) RecalculateTotals() {
	ls := make([]pricing.Recalculator, len(q.Lines))
	for i := range q.Lines {
		ls[i] = &q.Lines[i].LinePricing
	}
	t := pricing.Recompute(ls)
	q.TotalHT, q.TotalTVA, q.TotalTTC = t.HT, t.TVA, t.TTC
}

// CanEdit returns true while the quote is still in progress.
func (q *Quote) CanEdit() bool {
	return QuoteTransitions.Allows(q.Status, QuoteActionUpdate)
}
