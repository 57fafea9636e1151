// Package httpx holds the JSON helpers shared by the API handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/diewo77/go-devis/validation"
	"github.com/sirupsen/logrus"
)

// maxBody caps request payloads.
const maxBody = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Status maps an error kind to its HTTP status and public code.
// ErrInconsistent is checked first: an inconsistency also matches its cause.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInconsistent):
		return http.StatusInternalServerError, "inconsistent_state"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, "insufficient_stock"
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal_error"
}

// Error writes err as a JSON error body. Server errors are logged and their
// message is not exposed.
func Error(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status, code := Status(err)
	resp := ErrorResponse{Error: code}

	var v validation.Violations
	var se *models.StockError
	switch {
	case errors.As(err, &v):
		resp.Details = v
	case status == http.StatusUnprocessableEntity && errors.As(err, &se):
		resp.Message = se.Error()
		resp.Details = map[string]any{
			"product_id":   se.ProductID,
			"product_name": se.ProductName,
			"available":    se.Available,
			"requested":    se.Requested,
		}
	case status < http.StatusInternalServerError:
		resp.Message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("status", status).Error("request failed")
	}
	JSON(w, status, resp)
}

// Decode reads a JSON body into dst and validates it. Unknown fields are
// rejected. Malformed input is reported as a validation error on "body".
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return validation.Violations{"body": "malformed_json"}
	}
	v, err := validation.Struct(dst)
	if err != nil {
		return err
	}
	return v.Err()
}
