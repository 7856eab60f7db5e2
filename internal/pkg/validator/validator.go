package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Shared validator instance to avoid creating multiple instances
var validate *validator.Validate

func init() {
	validate = validator.New()
	// Lets numeric tags such as gte=0 apply to decimal.Decimal fields
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

// Get returns the shared validator instance
func Get() *validator.Validate {
	return validate
}

func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}

// HasAtMostTwoDecimals reports whether d is representable in cents
func HasAtMostTwoDecimals(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
