package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/shopspring/decimal"
)

func TestProductEndpoints(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/products", map[string]any{
		"code": "mat-01", "name": "Switch", "unit_price_ht": "12.50", "stock": 4, "category": "material",
	})
	expectStatus(t, rec, http.StatusCreated)
	p := decodeBody[models.Product](t, rec)
	if p.Code != "MAT-01" || !p.Active || p.Stock != 4 {
		t.Fatalf("created: %+v", p)
	}

	rec = a.do(t, http.MethodPost, "/api/products", map[string]any{"code": "MAT-01", "name": "dup", "unit_price_ht": "1"})
	expectStatus(t, rec, http.StatusConflict)
	if body := decodeBody[errorBody](t, rec); body.Error != "conflict" {
		t.Fatalf("error: %+v", body)
	}

	rec = a.do(t, http.MethodPost, "/api/products", map[string]any{"code": "X", "unit_price_ht": "-1"})
	expectStatus(t, rec, http.StatusBadRequest)
	body := decodeBody[errorBody](t, rec)
	if body.Details["name"] != "required" || body.Details["unit_price_ht"] != "must_not_be_negative" {
		t.Fatalf("details: %+v", body.Details)
	}

	rec = a.do(t, http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID), map[string]any{
		"code": "MAT-01", "name": "Switch 2", "unit_price_ht": "13", "stock": 100, "active": false,
	})
	expectStatus(t, rec, http.StatusOK)
	up := decodeBody[models.Product](t, rec)
	if up.Name != "Switch 2" || up.Stock != 4 || up.Active {
		t.Fatalf("updated: %+v", up)
	}

	rec = a.do(t, http.MethodPost, fmt.Sprintf("/api/products/%d/restock", p.ID), map[string]any{"quantity": 6})
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[models.Product](t, rec); got.Stock != 10 {
		t.Fatalf("restock: %d", got.Stock)
	}

	rec = a.do(t, http.MethodGet, "/api/products?active=true", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[[]models.Product](t, rec); len(got) != 1 || got[0].ID != a.product.ID {
		t.Fatalf("active list: %+v", got)
	}
	rec = a.do(t, http.MethodGet, "/api/products?q=switch", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[[]models.Product](t, rec); len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("search: %+v", got)
	}
}

func TestClientEndpoints(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/clients", map[string]any{"name": "Acme", "email": "not-an-email"})
	expectStatus(t, rec, http.StatusBadRequest)
	if body := decodeBody[errorBody](t, rec); body.Details["email"] != "invalid_email" {
		t.Fatalf("details: %+v", body.Details)
	}

	rec = a.do(t, http.MethodPost, "/api/clients", map[string]any{"name": "Acme", "email": "acme@example.com", "city": "Lyon"})
	expectStatus(t, rec, http.StatusCreated)
	c := decodeBody[models.Client](t, rec)

	rec = a.do(t, http.MethodPut, fmt.Sprintf("/api/clients/%d", c.ID), map[string]any{"name": "Acme SA", "email": "acme@example.com"})
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[models.Client](t, rec); got.Name != "Acme SA" || got.City != "" {
		t.Fatalf("updated: %+v", got)
	}

	rec = a.do(t, http.MethodGet, "/api/clients", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[[]models.Client](t, rec); len(got) != 2 {
		t.Fatalf("list: %d", len(got))
	}
	expectStatus(t, a.do(t, http.MethodGet, "/api/clients/999", nil), http.StatusNotFound)
}

func TestCompanyEndpoints(t *testing.T) {
	a := newTestAPI(t)
	expectStatus(t, a.do(t, http.MethodGet, "/api/company", nil), http.StatusNotFound)

	expectStatus(t, a.do(t, http.MethodPut, "/api/company", map[string]any{"name": "Atelier", "siret": "123"}), http.StatusBadRequest)

	rec := a.do(t, http.MethodPut, "/api/company", map[string]any{"name": "Atelier", "siret": "12345678900011"})
	expectStatus(t, rec, http.StatusOK)
	first := decodeBody[models.Company](t, rec)

	rec = a.do(t, http.MethodPut, "/api/company", map[string]any{"name": "Atelier Martin", "city": "Nantes"})
	expectStatus(t, rec, http.StatusOK)
	rec = a.do(t, http.MethodGet, "/api/company", nil)
	expectStatus(t, rec, http.StatusOK)
	got := decodeBody[models.Company](t, rec)
	if got.ID != first.ID || got.Name != "Atelier Martin" || got.City != "Nantes" {
		t.Fatalf("company: %+v", got)
	}
}

func TestStatsEndpoints(t *testing.T) {
	a := newTestAPI(t)
	inv := a.createInvoice(t, map[string]any{"lines": []map[string]any{{"product_id": a.product.ID, "quantity": 1}}})
	expectStatus(t, a.do(t, http.MethodPut, fmt.Sprintf("/api/invoices/%d/pay", inv.ID), nil), http.StatusOK)

	rec := a.do(t, http.MethodGet, "/api/stats", nil)
	expectStatus(t, rec, http.StatusOK)
	o := decodeBody[services.Overview](t, rec)
	if o.Invoices != 1 || !o.Revenue.Total.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("overview: %+v", o)
	}

	year := inv.CreatedAt.UTC().Year()
	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/stats/revenue/%d", year), nil)
	expectStatus(t, rec, http.StatusOK)
	months := decodeBody[[]services.MonthlyRevenue](t, rec)
	m := inv.CreatedAt.UTC().Month()
	if len(months) != 12 || !months[m-1].Revenue.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("monthly: %+v", months)
	}
	expectStatus(t, a.do(t, http.MethodGet, "/api/stats/revenue/abc", nil), http.StatusBadRequest)

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/stats/clients/%d", a.client.ID), nil)
	expectStatus(t, rec, http.StatusOK)
	if cs := decodeBody[services.ClientStats](t, rec); cs.Invoices != 1 {
		t.Fatalf("client stats: %+v", cs)
	}
}
