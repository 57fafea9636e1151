package handlers

import (
	"net/http"

	"github.com/diewo77/go-devis/httpx"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type companyRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"max=50"`
	Website    string `json:"website" validate:"max=255"`
	Address    string `json:"address" validate:"max=500"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
	SIRET      string `json:"siret" validate:"omitempty,len=14,numeric"`
	VATNumber  string `json:"vat_number" validate:"max=20"`
	IBAN       string `json:"iban" validate:"max=34"`
}

// CompanyHandler edits the issuer printed on documents.
type CompanyHandler struct {
	catalog *services.CatalogService
	log     logrus.FieldLogger
}

func NewCompanyHandler(catalog *services.CatalogService, log logrus.FieldLogger) *CompanyHandler {
	return &CompanyHandler{catalog: catalog, log: log}
}

func (h *CompanyHandler) Routes(r chi.Router) {
	r.Get("/", h.Show)
	r.Put("/", h.Update)
}

// Show returns the company settings, 404 until they are saved once.
func (h *CompanyHandler) Show(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.Company(r.Context())
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

// Update saves the company settings, creating them on first use.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	settings, err := issuerOrNil(h.catalog.Company(r.Context()))
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	if settings == nil {
		settings = &models.Company{}
	}

	settings.Name = req.Name
	settings.Email = req.Email
	settings.Phone = req.Phone
	settings.Website = req.Website
	settings.Address = req.Address
	settings.City = req.City
	settings.PostalCode = req.PostalCode
	settings.Country = req.Country
	settings.SIRET = req.SIRET
	settings.VATNumber = req.VATNumber
	settings.IBAN = req.IBAN

	saved, err := h.catalog.SaveCompany(r.Context(), settings)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}
