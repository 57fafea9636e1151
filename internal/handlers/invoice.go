package handlers

import (
	"net/http"

	"github.com/diewo77/go-devis/httpx"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/pdf"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type invoiceRequest struct {
	ClientID      uint                  `json:"client_id" validate:"required"`
	OriginQuoteID *uint                 `json:"origin_quote_id" validate:"omitempty,gt=0"`
	Lines         []lineRequest         `json:"lines" validate:"dive"`
	PaymentMethod *models.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=ESPECES CHEQUE VIREMENT CB PRELEVEMENT"`
}

type invoiceUpdateRequest struct {
	Status        *models.InvoiceStatus `json:"status" validate:"omitempty,oneof=UNPAID PARTIALLY_PAID PAID CANCELLED"`
	PaymentMethod *models.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=ESPECES CHEQUE VIREMENT CB PRELEVEMENT"`
}

type payRequest struct {
	PaymentMethod *models.PaymentMethod `json:"payment_method" validate:"omitempty,oneof=ESPECES CHEQUE VIREMENT CB PRELEVEMENT"`
}

type InvoiceHandler struct {
	invoices *services.InvoiceService
	catalog  *services.CatalogService
	renderer pdf.Renderer
	log      logrus.FieldLogger
}

func NewInvoiceHandler(invoices *services.InvoiceService, catalog *services.CatalogService, renderer pdf.Renderer, log logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, catalog: catalog, renderer: renderer, log: log}
}

// Routes mounts the invoice endpoints on r.
func (h *InvoiceHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/number/{number}", h.ByNumber)
	r.Get("/client/{clientId}", h.ByClient)
	r.Get("/{id}", withID(h.log, h.Get))
	r.Put("/{id}", withID(h.log, h.Update))
	r.Delete("/{id}", withID(h.log, h.Delete))
	r.Put("/{id}/pay", withID(h.log, h.Pay))
	r.Put("/{id}/cancel", withID(h.log, h.Cancel))
	r.Get("/{id}/pdf", withID(h.log, h.PDF))
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		out []models.Invoice
		err error
	)
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.InvoiceStatus(s)
		if !status.Valid() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"status": "invalid_value"})
			return
		}
		out, err = h.invoices.ByStatus(r.Context(), status)
	} else {
		out, err = h.invoices.List(r.Context())
	}
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	inv, err := h.invoices.Create(r.Context(), services.InvoiceInput{
		ClientID:      req.ClientID,
		OriginQuoteID: req.OriginQuoteID,
		Lines:         toLineInputs(req.Lines),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request, id uint) {
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) ByNumber(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.ByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) ByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := idParam(r, "clientId")
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	out, err := h.invoices.ByClient(r.Context(), clientID)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Update overwrites status and payment method as sent.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request, id uint) {
	var req invoiceUpdateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	inv, err := h.invoices.Update(r.Context(), id, services.InvoiceUpdate{Status: req.Status, PaymentMethod: req.PaymentMethod})
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Pay marks the invoice PAID. The body is optional.
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request, id uint) {
	var req payRequest
	if hasBody(r) {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, h.log, err)
			return
		}
	}
	inv, err := h.invoices.MarkPaid(r.Context(), id, req.PaymentMethod)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request, id uint) {
	inv, err := h.invoices.Cancel(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request, id uint) {
	if err := h.invoices.Delete(r.Context(), id); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request, id uint) {
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	issuer, err := issuerOrNil(h.catalog.Company(r.Context()))
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	body, err := h.renderer.Invoice(inv, issuer)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	writePDF(w, inv.Number, body)
}
