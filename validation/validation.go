// Package validation checks request payloads and reports field violations.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/diewo77/go-devis/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Violations maps a field path to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + v[k]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (v Violations) Unwrap() error { return models.ErrValidation }

// Err returns v as an error, or nil when there is no violation.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

func RangeDecimal(field string, val, minVal, maxVal decimal.Decimal, v Violations) {
	if val.LessThan(minVal) || val.GreaterThan(maxVal) {
		v[field] = "out_of_range"
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	vd.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// decimals are compared as numbers by the gt/gte/lte tags
	vd.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return vd
}

// Struct validates s against its `validate` tags and returns the violations
// keyed by JSON field path.
func Struct(s any) (Violations, error) {
	v := make(Violations)
	err := validate.Struct(s)
	if err == nil {
		return v, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("validate %T: %w", s, err)
	}
	for _, fe := range fieldErrs {
		v[fieldPath(fe.Namespace())] = code(fe)
	}
	return v, nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func code(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "required"
	case "gt":
		if fe.Param() == "0" {
			return "must_be_positive"
		}
		return "out_of_range"
	case "gte":
		if fe.Param() == "0" {
			return "must_not_be_negative"
		}
		return "out_of_range"
	case "lte", "lt", "min", "max":
		return "out_of_range"
	case "oneof":
		return "invalid_value"
	case "email":
		return "invalid_email"
	case "dive":
		return "invalid"
	}
	return fe.Tag()
}
