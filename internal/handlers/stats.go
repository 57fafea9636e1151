package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-devis/httpx"
	"github.com/diewo77/go-devis/internal/services"
	"github.com/diewo77/go-devis/validation"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type StatsHandler struct {
	stats *services.StatsService
	log   logrus.FieldLogger
}

func NewStatsHandler(stats *services.StatsService, log logrus.FieldLogger) *StatsHandler {
	return &StatsHandler{stats: stats, log: log}
}

func (h *StatsHandler) Routes(r chi.Router) {
	r.Get("/", h.Overview)
	r.Get("/revenue/{year}", h.Monthly)
	r.Get("/clients/{id}", withID(h.log, h.Client))
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.stats.Overview(r.Context())
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Monthly returns twelve revenue buckets for the year in the path.
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 9999 {
		httpx.Error(w, h.log, validation.Violations{"year": "invalid_value"})
		return
	}
	out, err := h.stats.MonthlyRevenue(r.Context(), year)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *StatsHandler) Client(w http.ResponseWriter, r *http.Request, id uint) {
	out, err := h.stats.Client(r.Context(), id)
	if err != nil {
		httpx.Error(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
