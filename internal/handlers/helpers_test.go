package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/pdf"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/diewo77/go-devis/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testAPI struct {
	db      *gorm.DB
	router  chi.Router
	client  models.Client
	product models.Product
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	st := store.New(db)
	opts := []services.Option{services.WithLogger(log)}
	quotes := services.NewQuoteService(st, opts...)
	invoices := services.NewInvoiceService(st, opts...)
	conversion := services.NewConversionService(st, invoices, opts...)
	catalog := services.NewCatalogService(st, opts...)
	stats := services.NewStatsService(st, opts...)
	renderer := pdf.New()

	r := chi.NewRouter()
	r.Route("/api/quotes", NewQuoteHandler(quotes, conversion, catalog, renderer, log).Routes)
	r.Route("/api/invoices", NewInvoiceHandler(invoices, catalog, renderer, log).Routes)
	r.Route("/api/products", NewProductHandler(catalog, log).Routes)
	r.Route("/api/clients", NewClientHandler(catalog, log).Routes)
	r.Route("/api/company", NewCompanyHandler(catalog, log).Routes)
	r.Route("/api/stats", NewStatsHandler(stats, log).Routes)

	a := &testAPI{db: db, router: r}
	a.client = models.Client{Name: "ClientCo", Email: "client@test", Active: true}
	if err := db.Create(&a.client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	a.product = models.Product{Code: "SKU1", Name: "Cable", UnitPriceHT: decimal.NewFromInt(100), Stock: 10, Active: true}
	if err := db.Create(&a.product).Error; err != nil {
		t.Fatalf("product: %v", err)
	}
	return a
}

// do sends a request with an optional JSON body and returns the recorder.
func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d want %d, body=%s", rec.Code, want, rec.Body.String())
	}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func (a *testAPI) createQuote(t *testing.T, qty int) models.Quote {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/quotes", map[string]any{
		"client_id": a.client.ID,
		"lines":     []map[string]any{{"product_id": a.product.ID, "quantity": qty}},
	})
	expectStatus(t, rec, http.StatusCreated)
	return decodeBody[models.Quote](t, rec)
}
