package models

import (
	"strings"
	"time"
)

// Client is a customer the documents are addressed to.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"size:255;not null;index" json:"name"`
	Email string `gorm:"size:255" json:"email,omitempty"`
	Phone string `gorm:"size:50" json:"phone,omitempty"`

	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`

	Active bool `gorm:"not null" json:"active"`
}

// FullAddress returns the formatted full address.
func (c *Client) FullAddress() string {
	return formatAddress(c.Address, c.PostalCode, c.City, c.Country)
}

func formatAddress(street, postalCode, city, country string) string {
	var lines []string
	if street != "" {
		lines = append(lines, street)
	}
	if locality := strings.TrimSpace(postalCode + " " + city); locality != "" {
		lines = append(lines, locality)
	}
	if country != "" {
		lines = append(lines, country)
	}
	return strings.Join(lines, "\n")
}
