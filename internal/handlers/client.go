package handlers

import (
	"net/http"

	"github.com/diewo77/go-devis/httpx"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type clientRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"max=50"`
	Address    string `json:"address" validate:"max=500"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
	Active     *bool  `json:"active"`
}

func (req clientRequest) apply(c *models.Client) {
	c.Name = req.Name
	c.Email = req.Email
	c.Phone = req.Phone
	c.Address = req.Address
	c.City = req.City
	c.PostalCode = req.PostalCode
	c.Country = req.Country
	if req.Active != nil {
		c.Active = *req.Active
	}
}

type ClientHandler struct {
	catalog *services.CatalogService
	log     logrus.FieldLogger
}

func NewClientHandler(catalog *services.CatalogService, log logrus.FieldLogger) *ClientHandler {
	return &ClientHandler{catalog: catalog, log: log}
}

// Routes mounts the client endpoints on r.
func (h *ClientHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", withID(h.log, h.View))
	r.Put("/{id}", withID(h.log, h.Update))
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.catalog.ListClients(r.Context())
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	client := models.Client{Active: true}
	req.apply(&client)
	if err := h.catalog.CreateClient(r.Context(), &client); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) View(w http.ResponseWriter, r *http.Request, id uint) {
	client, err := h.catalog.GetClient(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request, id uint) {
	var req clientRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	client, err := h.catalog.GetClient(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	req.apply(client)
	updated, err := h.catalog.UpdateClient(r.Context(), client)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
