package models

import (
	"time"

	"github.com/diewo77/go-devis/internal/pricing"
	"github.com/shopspring/decimal"
)

// Invoice is a billing document ("facture"), optionally created from a quote.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Number is FAC-YYYY-NNNN, unique across all invoices.
	Number string `gorm:"size:20;not null;uniqueIndex" json:"number"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	OriginQuoteID *uint  `gorm:"index" json:"origin_quote_id,omitempty"`
	OriginQuote   *Quote `gorm:"foreignKey:OriginQuoteID;constraint:OnDelete:SET NULL" json:"-"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`

	MontantHT  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"montant_ht"`
	MontantTVA decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"montant_tva"`
	MontantTTC decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"montant_ttc"`

	PaymentMethod *PaymentMethod `gorm:"size:20" json:"payment_method,omitempty"`
	Status        InvoiceStatus  `gorm:"size:20;not null;index" json:"status"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
}

// InvoiceLine is one product row of an invoice. InvoiceID is maintained by Invoice.SetLines.
type InvoiceLine struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Position  int      `gorm:"not null;default:0" json:"position"`
	ProductID uint     `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	LinePricing
}

// SetLines replaces the whole line collection, attaches every line to inv and
// recomputes the amounts.
func (inv *Invoice) SetLines(lines []InvoiceLine) {
	for i := range lines {
		lines[i].InvoiceID = inv.ID
		lines[i].Position = i + 1
	}
	inv.Lines = lines
	inv.RecalculateTotals()
}

// RecalculateTotals recomputes every line and the invoice amounts.
func (inv *Invoice) RecalculateTotals() {
	ls := make([]pricing.Recalculator, len(inv.Lines))
	for i := range inv.Lines {
		ls[i] = &inv.Lines[i].LinePricing
	}
	t := pricing.Recompute(ls)
	inv.MontantHT, inv.MontantTVA, inv.MontantTTC = t.HT, t.TVA, t.TTC
}

// IsSettled returns true once the invoice has been paid.
func (inv *Invoice) IsSettled() bool {
	return inv.Status == InvoiceStatusPaid
}
