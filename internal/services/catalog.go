package services

import (
	"context"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/store"
	"github.com/diewo77/go-devis/validation"
)

// CatalogService maintains products, clients and the issuing company.
type CatalogService struct {
	base
}

func NewCatalogService(st *store.Store, opts ...Option) *CatalogService {
	return &CatalogService{base: newBase(st, opts)}
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	v := make(validation.Violations)
	validation.Required("name", p.Name, v)
	validation.NonNegativeDecimal("unit_price_ht", p.UnitPriceHT, v)
	if p.Stock < 0 {
		v["stock"] = "must_not_be_negative"
	}
	if err := v.Err(); err != nil {
		return err
	}
	return s.store.CreateProduct(ctx, p)
}

// UpdateProduct saves everything but the stock, which only moves through
// Restock and conversions.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	v := make(validation.Violations)
	validation.Required("name", p.Name, v)
	validation.NonNegativeDecimal("unit_price_ht", p.UnitPriceHT, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetProduct(ctx, p.ID)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, error) {
	return s.store.ListProducts(ctx, f)
}

// Restock adds qty units to a product.
func (s *CatalogService) Restock(ctx context.Context, id uint, qty int) (*models.Product, error) {
	v := make(validation.Violations)
	validation.PositiveInt("quantity", qty, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	p, err := s.store.Restock(ctx, id, qty)
	if err != nil {
		return nil, err
	}
	s.log.WithField("product_id", id).WithField("stock", p.Stock).Info("product restocked")
	return p, nil
}

func (s *CatalogService) CreateClient(ctx context.Context, c *models.Client) error {
	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	if err := v.Err(); err != nil {
		return err
	}
	return s.store.CreateClient(ctx, c)
}

func (s *CatalogService) UpdateClient(ctx context.Context, c *models.Client) (*models.Client, error) {
	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	return s.store.GetClient(ctx, c.ID)
}

func (s *CatalogService) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	return s.store.GetClient(ctx, id)
}

func (s *CatalogService) ListClients(ctx context.Context) ([]models.Client, error) {
	return s.store.ListClients(ctx)
}

// Company returns the issuer; NotFound until one is saved.
func (s *CatalogService) Company(ctx context.Context) (*models.Company, error) {
	return s.store.GetCompany(ctx)
}

func (s *CatalogService) SaveCompany(ctx context.Context, c *models.Company) (*models.Company, error) {
	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.store.SaveCompany(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
