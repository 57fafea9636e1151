package store

import (
	"context"

	"github.com/diewo77/go-devis/internal/models"
	"gorm.io/gorm"
)

// ProductFilter narrows ListProducts. Zero values match everything.
type ProductFilter struct {
	Query      string
	Category   string
	ActiveOnly bool
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(s.conn(ctx).Create(p).Error, "product", "code", p.Code)
}

// UpdateProduct saves the descriptive fields. Stock is never written here.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := s.conn(ctx).Model(p).
		Select("code", "name", "description", "unit_price_ht", "category", "active").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error, "product", "code", p.Code)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("product", p.ID)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, "product", "id", id)
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.conn(ctx).Model(&models.Product{})
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(code) LIKE LOWER(?)", like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	var out []models.Product
	if err := q.Order("name").Find(&out).Error; err != nil {
		return nil, translate(err, "product", "query", f.Query)
	}
	return out, nil
}

// ProductsByID loads the given products keyed by id. Missing ids are reported as
// NotFound.
func (s *Store) ProductsByID(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ps []models.Product
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&ps).Error; err != nil {
		return nil, translate(err, "product", "id", ids)
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, models.NotFound("product", id)
		}
	}
	return out, nil
}

// DecrementStock removes qty units from the product in one conditional UPDATE,
// so two concurrent callers can never both pass the availability check.
func (s *Store) DecrementStock(ctx context.Context, productID uint, qty int) error {
	res := s.conn(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return translate(res.Error, "product", "id", productID)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	return &models.StockError{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: qty}
}

// Restock adds qty units to the product and returns its new state.
func (s *Store) Restock(ctx context.Context, productID uint, qty int) (*models.Product, error) {
	res := s.conn(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return nil, translate(res.Error, "product", "id", productID)
	}
	if res.RowsAffected == 0 {
		return nil, models.NotFound("product", productID)
	}
	return s.GetProduct(ctx, productID)
}

func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	return translate(s.conn(ctx).Create(c).Error, "client", "name", c.Name)
}

func (s *Store) UpdateClient(ctx context.Context, c *models.Client) error {
	res := s.conn(ctx).Model(c).
		Select("name", "email", "phone", "address", "city", "postal_code", "country", "active").
		Updates(c)
	if res.Error != nil {
		return translate(res.Error, "client", "id", c.ID)
	}
	if res.RowsAffected == 0 {
		return models.NotFound("client", c.ID)
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "client", "id", id)
	}
	return &c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	var out []models.Client
	if err := s.conn(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, translate(err, "client", "all", nil)
	}
	return out, nil
}

// ClientExists returns NotFound when no client has the given id.
func (s *Store) ClientExists(ctx context.Context, id uint) error {
	var n int64
	if err := s.conn(ctx).Model(&models.Client{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err, "client", "id", id)
	}
	if n == 0 {
		return models.NotFound("client", id)
	}
	return nil
}

// GetCompany returns the issuer row, NotFound when none was saved yet.
func (s *Store) GetCompany(ctx context.Context) (*models.Company, error) {
	var c models.Company
	if err := s.conn(ctx).Order("id").First(&c).Error; err != nil {
		return nil, translate(err, "company", "singleton", 1)
	}
	return &c, nil
}

// SaveCompany inserts or overwrites the issuer row.
func (s *Store) SaveCompany(ctx context.Context, c *models.Company) error {
	if c.ID == 0 {
		if existing, err := s.GetCompany(ctx); err == nil {
			c.ID = existing.ID
			c.CreatedAt = existing.CreatedAt
		}
	}
	return translate(s.conn(ctx).Save(c).Error, "company", "id", c.ID)
}
