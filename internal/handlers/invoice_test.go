package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/diewo77/go-devis/internal/models"
)

func (a *testAPI) createInvoice(t *testing.T, body map[string]any) models.Invoice {
	t.Helper()
	if _, ok := body["client_id"]; !ok {
		body["client_id"] = a.client.ID
	}
	rec := a.do(t, http.MethodPost, "/api/invoices", body)
	expectStatus(t, rec, http.StatusCreated)
	return decodeBody[models.Invoice](t, rec)
}

func TestInvoicePaymentFlow(t *testing.T) {
	a := newTestAPI(t)
	inv := a.createInvoice(t, map[string]any{
		"lines": []map[string]any{{"product_id": a.product.ID, "quantity": 1}},
	})
	if inv.Status != models.InvoiceStatusUnpaid || !strings.HasPrefix(inv.Number, "FAC-") {
		t.Fatalf("invoice: %+v", inv)
	}

	rec := a.do(t, http.MethodPut, fmt.Sprintf("/api/invoices/%d/pay", inv.ID), map[string]any{"payment_method": "CB"})
	expectStatus(t, rec, http.StatusOK)
	paid := decodeBody[models.Invoice](t, rec)
	if paid.Status != models.InvoiceStatusPaid || paid.PaymentMethod == nil || *paid.PaymentMethod != models.PaymentCard {
		t.Fatalf("paid: %+v", paid)
	}

	rec = a.do(t, http.MethodPut, fmt.Sprintf("/api/invoices/%d/cancel", inv.ID), nil)
	expectStatus(t, rec, http.StatusConflict)
	if body := decodeBody[errorBody](t, rec); body.Error != "invalid_state" {
		t.Fatalf("error: %+v", body)
	}

	other := a.createInvoice(t, map[string]any{})
	expectStatus(t, a.do(t, http.MethodPut, fmt.Sprintf("/api/invoices/%d/cancel", other.ID), nil), http.StatusOK)
	expectStatus(t, a.do(t, http.MethodPut, fmt.Sprintf("/api/invoices/%d/pay", other.ID), nil), http.StatusConflict)
}

func TestInvoiceUpdateAndDelete(t *testing.T) {
	a := newTestAPI(t)
	inv := a.createInvoice(t, map[string]any{})

	rec := a.do(t, http.MethodPut, fmt.Sprintf("/api/invoices/%d", inv.ID), map[string]any{"status": "PAID", "payment_method": "VIREMENT"})
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[models.Invoice](t, rec); got.Status != models.InvoiceStatusPaid || got.PaidAt == nil {
		t.Fatalf("update: %+v", got)
	}

	rec = a.do(t, http.MethodPut, fmt.Sprintf("/api/invoices/%d", inv.ID), map[string]any{"status": "LOST"})
	expectStatus(t, rec, http.StatusBadRequest)
	if body := decodeBody[errorBody](t, rec); body.Details["status"] != "invalid_value" {
		t.Fatalf("details: %+v", body.Details)
	}

	expectStatus(t, a.do(t, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", inv.ID), nil), http.StatusNoContent)
	expectStatus(t, a.do(t, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", inv.ID), nil), http.StatusNotFound)
}

func TestInvoiceCreateErrors(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/api/invoices", map[string]any{"client_id": a.client.ID, "payment_method": "BITCOIN"})
	expectStatus(t, rec, http.StatusBadRequest)
	if body := decodeBody[errorBody](t, rec); body.Details["payment_method"] != "invalid_value" {
		t.Fatalf("details: %+v", body.Details)
	}
	expectStatus(t, a.do(t, http.MethodPost, "/api/invoices", map[string]any{"client_id": a.client.ID, "origin_quote_id": 77}), http.StatusNotFound)
	expectStatus(t, a.do(t, http.MethodPost, "/api/invoices", map[string]any{"client_id": a.client.ID, "unknown": true}), http.StatusBadRequest)
}

func TestInvoiceReadsAndPDF(t *testing.T) {
	a := newTestAPI(t)
	inv := a.createInvoice(t, map[string]any{"lines": []map[string]any{{"product_id": a.product.ID, "quantity": 2}}})

	rec := a.do(t, http.MethodGet, "/api/invoices/number/"+inv.Number, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[models.Invoice](t, rec); got.ID != inv.ID || len(got.Lines) != 1 {
		t.Fatalf("by number: %+v", got)
	}
	rec = a.do(t, http.MethodGet, "/api/invoices?status=UNPAID", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[[]models.Invoice](t, rec); len(got) != 1 {
		t.Fatalf("by status: %d", len(got))
	}
	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/invoices/client/%d", a.client.ID), nil)
	expectStatus(t, rec, http.StatusOK)

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/invoices/%d/pdf", inv.ID), nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Fatalf("not a pdf")
	}
}
