package models

import (
	"github.com/diewo77/go-devis/internal/pricing"
	"github.com/shopspring/decimal"
)

// LinePricing holds the priced fields shared by quote and invoice lines.
// UnitPriceHT is a snapshot taken when the line is built; later catalog price
// changes do not affect it.
type LinePricing struct {
	Quantity     int                 `gorm:"not null" json:"quantity"`
	UnitPriceHT  decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"unit_price_ht"`
	TaxRate      decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"tax_rate"`
	TotalLineHT  decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"total_line_ht"`
	TotalLineTTC decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"total_line_ttc"`
}

// Recalculate refreshes the line totals from price, quantity and rate.
func (p *LinePricing) Recalculate() pricing.Amounts {
	a := pricing.Line(p.UnitPriceHT, p.Quantity, p.TaxRate)
	p.TotalLineHT = a.HT
	p.TotalLineTTC = a.TTC
	return a
}

// NewLinePricing builds a computed line. A nil rate falls back to pricing.DefaultTaxRate.
func NewLinePricing(quantity int, unitPriceHT decimal.Decimal, taxRate *decimal.Decimal) LinePricing {
	rate := pricing.DefaultTaxRate
	if taxRate != nil {
		rate = *taxRate
	}
	p := LinePricing{
		Quantity:    quantity,
		UnitPriceHT: unitPriceHT,
		TaxRate:     decimal.NullDecimal{Decimal: rate, Valid: true},
	}
	p.Recalculate()
	return p
}

// LineInput is a requested line: the product and quantity, with an optional
// price override and optional tax rate.
type LineInput struct {
	ProductID   uint
	Quantity    int
	UnitPriceHT *decimal.Decimal
	TaxRate     *decimal.Decimal
}

// DocumentKind is the number prefix of a document type.
type DocumentKind string

const (
	KindQuote   DocumentKind = "DEV"
	KindInvoice DocumentKind = "FAC"
)
