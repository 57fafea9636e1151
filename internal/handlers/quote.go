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

type quoteRequest struct {
	ClientID uint          `json:"client_id" validate:"required"`
	Comment  string        `json:"comment" validate:"max=2000"`
	Lines    []lineRequest `json:"lines" validate:"dive"`
}

type quoteUpdateRequest struct {
	Comment string        `json:"comment" validate:"max=2000"`
	Lines   []lineRequest `json:"lines" validate:"dive"`
}

type QuoteHandler struct {
	quotes     *services.QuoteService
	conversion *services.ConversionService
	catalog    *services.CatalogService
	renderer   pdf.Renderer
	log        logrus.FieldLogger
}

func NewQuoteHandler(quotes *services.QuoteService, conversion *services.ConversionService, catalog *services.CatalogService, renderer pdf.Renderer, log logrus.FieldLogger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, conversion: conversion, catalog: catalog, renderer: renderer, log: log}
}

// Routes mounts the quote endpoints on r.
func (h *QuoteHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/number/{number}", h.ByNumber)
	r.Get("/client/{clientId}", h.ByClient)
	r.Get("/{id}", withID(h.log, h.Get))
	r.Put("/{id}", withID(h.log, h.Update))
	r.Delete("/{id}", withID(h.log, h.Delete))
	r.Put("/{id}/validate", withID(h.log, h.Validate))
	r.Put("/{id}/cancel", withID(h.log, h.Cancel))
	r.Post("/{id}/convert", withID(h.log, h.Convert))
	r.Get("/{id}/pdf", withID(h.log, h.PDF))
}

// List returns every quote, or those in ?status= when given.
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		out []models.Quote
		err error
	)
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.QuoteStatus(s)
		if !status.Valid() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"status": "invalid_value"})
			return
		}
		out, err = h.quotes.ByStatus(r.Context(), status)
	} else {
		out, err = h.quotes.List(r.Context())
	}
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	q, err := h.quotes.Create(r.Context(), services.QuoteInput{
		ClientID: req.ClientID,
		Comment:  req.Comment,
		Lines:    toLineInputs(req.Lines),
	})
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request, id uint) {
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) ByNumber(w http.ResponseWriter, r *http.Request) {
	q, err := h.quotes.ByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) ByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := idParam(r, "clientId")
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	out, err := h.quotes.ByClient(r.Context(), clientID)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Update replaces comment and lines of an IN_PROGRESS quote.
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request, id uint) {
	var req quoteUpdateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	q, err := h.quotes.Update(r.Context(), id, services.QuoteInput{Comment: req.Comment, Lines: toLineInputs(req.Lines)})
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request, id uint) {
	if err := h.quotes.Delete(r.Context(), id); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuoteHandler) Validate(w http.ResponseWriter, r *http.Request, id uint) {
	q, err := h.quotes.Validate(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) Cancel(w http.ResponseWriter, r *http.Request, id uint) {
	q, err := h.quotes.Cancel(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Convert turns a VALIDATED quote into an invoice and returns the invoice.
func (h *QuoteHandler) Convert(w http.ResponseWriter, r *http.Request, id uint) {
	inv, err := h.conversion.Convert(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *QuoteHandler) PDF(w http.ResponseWriter, r *http.Request, id uint) {
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	issuer, err := issuerOrNil(h.catalog.Company(r.Context()))
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	body, err := h.renderer.Quote(q, issuer)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	writePDF(w, q.Number, body)
}
