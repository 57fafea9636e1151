// Package handlers exposes the services as a JSON API mounted on a chi router.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/go-devis/httpx"
	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/validation"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type lineRequest struct {
	ProductID   uint             `json:"product_id" validate:"required"`
	Quantity    int              `json:"quantity" validate:"gt=0"`
	UnitPriceHT *decimal.Decimal `json:"unit_price_ht" validate:"omitempty,gte=0"`
	TaxRate     *decimal.Decimal `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
}

func toLineInputs(in []lineRequest) []models.LineInput {
	out := make([]models.LineInput, len(in))
	for i, l := range in {
		out[i] = models.LineInput{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPriceHT: l.UnitPriceHT,
			TaxRate:     l.TaxRate,
		}
	}
	return out
}

// idParam parses a positive numeric path parameter.
func idParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, validation.Violations{name: "invalid_value"}
	}
	return uint(id), nil
}

// withID resolves the {id} parameter before calling fn.
func withID(log logrus.FieldLogger, fn func(w http.ResponseWriter, r *http.Request, id uint)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			httpx.Error(w, log, err)
			return
		}
		fn(w, r, id)
	}
}

// hasBody reports whether the request may carry a payload.
func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

// issuerOrNil returns the company, or nil when none is configured yet.
func issuerOrNil(c *models.Company, err error) (*models.Company, error) {
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

func writePDF(w http.ResponseWriter, number string, body []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+number+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
