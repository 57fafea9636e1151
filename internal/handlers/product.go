package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-devis/httpx"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/diewo77/go-devis/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type productRequest struct {
	Code        string          `json:"code" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	UnitPriceHT decimal.Decimal `json:"unit_price_ht" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"max=100"`
	Active      *bool           `json:"active"`
}

func (req productRequest) apply(p *models.Product) {
	p.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	p.Name = req.Name
	p.Description = req.Description
	p.UnitPriceHT = req.UnitPriceHT
	p.Category = req.Category
	if req.Active != nil {
		p.Active = *req.Active
	}
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

type ProductHandler struct {
	catalog *services.CatalogService
	log     logrus.FieldLogger
}

func NewProductHandler(catalog *services.CatalogService, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{catalog: catalog, log: log}
}

// Routes mounts the product endpoints on r.
func (h *ProductHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", withID(h.log, h.View))
	r.Put("/{id}", withID(h.log, h.Update))
	r.Post("/{id}/restock", withID(h.log, h.Restock))
}

// List supports ?q= (name or code), ?category= and ?active=true.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.catalog.ListProducts(r.Context(), store.ProductFilter{
		Query:      strings.TrimSpace(q.Get("q")),
		Category:   q.Get("category"),
		ActiveOnly: q.Get("active") == "true",
	})
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	product := models.Product{Stock: req.Stock, Active: true}
	req.apply(&product)
	if err := h.catalog.CreateProduct(r.Context(), &product); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request, id uint) {
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Update saves the descriptive fields; a stock value in the body is ignored.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request, id uint) {
	var req productRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	req.apply(product)
	updated, err := h.catalog.UpdateProduct(r.Context(), product)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request, id uint) {
	var req restockRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	product, err := h.catalog.Restock(r.Context(), id, req.Quantity)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}
