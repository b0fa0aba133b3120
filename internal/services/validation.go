package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

var (
	ErrUnauthorized = errors.New("invalid username or password")
	ErrForbidden    = errors.New("permission denied")
)

// ValidationError carries the rejected input fields, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// orNil returns e only when it holds at least one field.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// phoneRegion is used for numbers given without a country code.
const phoneRegion = "IN"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("phone", validPhone)
	return v
}

func validPhone(fl validator.FieldLevel) bool {
	p, err := libphonenumber.Parse(fl.Field().String(), phoneRegion)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(p)
}

// validateStruct runs the validate tags on input and converts failures into
// a ValidationError.
func validateStruct(input any) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(input)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("input", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.add(fieldPath(fe), describe(fe))
	}
	return verr
}

// fieldPath drops the struct name from the namespace: "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must have at least " + fe.Param()
	case "max":
		return "must have at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "numeric":
		return "must be numeric"
	case "phone":
		return "must be a valid phone number"
	}
	return fe.Tag()
}

func checkPositive(verr *ValidationError, field string, d decimal.Decimal) {
	if !d.IsPositive() {
		verr.add(field, "must be greater than zero")
	}
}

func checkNonNegative(verr *ValidationError, field string, d decimal.Decimal) {
	if d.IsNegative() {
		verr.add(field, "must not be negative")
	}
}

// moneyPlaces is the scale of every stored money column.
const moneyPlaces = 2

// checkCents rejects amounts with more than two decimal places.
func checkCents(verr *ValidationError, field string, d decimal.Decimal) {
	if !d.Equal(d.Round(moneyPlaces)) {
		verr.add(field, "must have at most 2 decimal places")
	}
}

// toCents rounds a derived amount to the stored scale.
func toCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

var hundred = decimal.NewFromInt(100)

func checkMargin(verr *ValidationError, field string, d decimal.Decimal) {
	if d.IsNegative() || d.GreaterThan(hundred) {
		verr.add(field, "must be between 0 and 100")
	}
}
