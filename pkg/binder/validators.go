package binder

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const decimalPositive = "dpositive"

// decimalPositiveValidator ensures a decimal.Decimal value is strictly greater
// than zero. Works on both decimal.Decimal fields and pointers to them.
func decimalPositiveValidator(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return d.IsPositive()
}
