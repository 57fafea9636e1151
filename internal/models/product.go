package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Documents only read its name and price; stock is
// changed exclusively through the store's stock ledger.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Code        string          `gorm:"size:50;uniqueIndex" json:"code,omitempty"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	UnitPriceHT decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price_ht"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Category    string          `gorm:"size:100" json:"category,omitempty"`
	Active      bool            `gorm:"not null" json:"active"`
}

// PriceTTC returns the unit price including tax at the given percent rate.
func (p *Product) PriceTTC(ratePercent decimal.Decimal) decimal.Decimal {
	return NewLinePricing(1, p.UnitPriceHT, &ratePercent).TotalLineTTC
}
