package models

import "time"

// Company is the issuer printed on every quote and invoice. The application
// keeps a single row.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Website string `gorm:"size:255" json:"website,omitempty"`

	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`

	// Tax & legal information
	SIRET     string `gorm:"size:14" json:"siret,omitempty"`
	VATNumber string `gorm:"size:20" json:"vat_number,omitempty"`
	IBAN      string `gorm:"size:34" json:"iban,omitempty"`
}

// FullAddress returns the formatted full address.
func (c *Company) FullAddress() string {
	return formatAddress(c.Address, c.PostalCode, c.City, c.Country)
}

// All returns every persisted model, in migration order.
func All() []any {
	return []any{&Company{}, &Client{}, &Product{}, &Quote{}, &QuoteLine{}, &Invoice{}, &InvoiceLine{}}
}
