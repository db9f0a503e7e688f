package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/go-playground/validator/v10"
)

type ForecastParams struct {
	HorizonDays int `param:"forecast_horizon_days" validate:"gt=0,lte=365"`
}

type AnomalyParams struct {
	Threshold float64 `param:"threshold" validate:"gt=0"`
}

type ProcurementParams struct {
	MinStockDays int `param:"min_stock_days" validate:"gt=0"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("param"); name != "" {
			return name
		}
		return strings.ToLower(field.Name)
	})
	return v
}

// validateParams turns the first failed rule into a domain.ValidationError
// naming the query parameter.
func validateParams(v *validator.Validate, params any) error {
	err := v.Struct(params)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate params: %w", err)
	}

	fe := fieldErrs[0]
	return domain.NewValidationError(fe.Field(), ruleMessage(fe))
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
