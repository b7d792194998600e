// Package validate checks request structs and cleans user-supplied text.
package validate

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals are compared as float64. Values outside the Amount range
	// become NaN, which fails every numeric rule and the "amount" tag.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			if !Amount(d) {
				return math.NaN()
			}
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			return !math.IsNaN(fl.Field().Float())
		}
		return false
	})

	return v
}

const (
	maxAmountScale       = 12
	maxAmountCoefficient = 96 // bits
)

// Amount reports whether d is small enough in scale and digits to be
// rounded, formatted or compared without expanding a huge exponent.
func Amount(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -maxAmountScale || exp > maxAmountScale {
		return false
	}
	return d.Coefficient().BitLen() <= maxAmountCoefficient
}

// FieldError is a single failed rule.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is a structured validation failure.
type Error struct {
	Fields []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Path + " " + e.Fields[0].Message
}

// Fail builds an *Error for a single field.
func Fail(path, message string) *Error {
	return &Error{Fields: []FieldError{{Path: path, Message: message}}}
}

// Struct runs the validate tags on v. Rule failures come back as *Error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return mapValidationErrors(ve)
	}
	return err
}

func mapValidationErrors(errs validator.ValidationErrors) *Error {
	out := &Error{}

	for _, e := range errs {
		var message string
		switch e.Tag() {
		case "required":
			message = "is required"
		case "email":
			message = "must be a valid email address"
		case "min":
			if e.Kind() == reflect.Slice {
				message = "must have at least " + e.Param() + " entries"
			} else if e.Kind() == reflect.String {
				message = "must be at least " + e.Param() + " characters"
			} else {
				message = "must be at least " + e.Param()
			}
		case "max":
			if e.Kind() == reflect.Slice {
				message = "must have at most " + e.Param() + " entries"
			} else if e.Kind() == reflect.String {
				message = "must be at most " + e.Param() + " characters"
			} else {
				message = "must be at most " + e.Param()
			}
		case "gte":
			message = "must be greater than or equal to " + e.Param()
		case "gt":
			message = "must be greater than " + e.Param()
		case "lte":
			message = "must be less than or equal to " + e.Param()
		case "amount":
			message = "must be a decimal amount"
		case "oneof":
			message = "must be one of: " + e.Param()
		default:
			message = "is invalid"
		}

		out.Fields = append(out.Fields, FieldError{
			Path:    fieldPath(e.Namespace()),
			Message: message,
		})
	}

	return out
}

// fieldPath turns "CreateOrderRequest.items[0].quantity" into "items.0.quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}
