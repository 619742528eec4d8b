// Package validation turns request structs into field errors keyed by their JSON names.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"tradedesk/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Errors maps a JSON field name to a human readable message.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = validate.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && d.IsPositive()
		})
		_ = validate.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative()
		})
		_ = validate.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative() && d.LessThan(decimal.NewFromInt(100))
		})
		_ = validate.RegisterValidation("trade_status", func(fl validator.FieldLevel) bool {
			return models.IsTradeStatus(fl.Field().String())
		})
		_ = validate.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
	})
	return validate
}

// Validate checks v's `validate` tags. It returns nil or an Errors value.
func Validate(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

// StrongPassword requires the minimum length and at least one special character.
func StrongPassword(s string) bool {
	return len(s) >= MinPasswordLength && len(s) <= MaxPasswordLength &&
		strings.ContainsAny(s, "!@#$%^&*()_+-=[]{}|;:,.<>?`~\"")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "decimal_gt0":
		return "must be a positive amount"
	case "decimal_gte0":
		return "must not be negative"
	case "percent":
		return "must be at least 0 and below 100"
	case "trade_status":
		return "is not a valid trade status"
	case "strong_password":
		return fmt.Sprintf("must be %d-%d characters and contain a special character", MinPasswordLength, MaxPasswordLength)
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
