package db

import (
	"errors"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Seed inserts a demo company, clients and products. Existing rows are left
// untouched so it can run on every start.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var company models.Company
		if err := tx.First(&company).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			company = models.Company{Name: "Devis & Co", Email: "contact@devis.example", City: "Paris", PostalCode: "75001", Country: "France"}
			if err := tx.Create(&company).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		clients := []models.Client{
			{Name: "Atelier Dupont", Email: "contact@dupont.example", City: "Lyon", Active: true},
			{Name: "Boulangerie Martin", Email: "martin@boulangerie.example", City: "Nantes", Active: true},
		}
		for _, c := range clients {
			if err := tx.Where(models.Client{Name: c.Name}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
		}

		products := []models.Product{
			{Code: "SRV-DEV", Name: "Développement (jour)", UnitPriceHT: decimal.RequireFromString("450.00"), Stock: 100, Category: "Service", Active: true},
			{Code: "MAT-CABLE", Name: "Câble réseau 10m", UnitPriceHT: decimal.RequireFromString("12.50"), Stock: 250, Category: "Matériel", Active: true},
			{Code: "MAT-SWITCH", Name: "Switch 24 ports", UnitPriceHT: decimal.RequireFromString("189.90"), Stock: 10, Category: "Matériel", Active: true},
		}
		for _, p := range products {
			if err := tx.Where(models.Product{Code: p.Code}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
