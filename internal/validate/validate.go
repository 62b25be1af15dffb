// Package validate provides functions to validate invoice payloads and request parameters.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kylejryan/momo-invoice-backend/internal/models"
)

// ErrValidation is wrapped by every error returned from this package.
var ErrValidation = errors.New("validation error")

// PathParam returns the named path parameter, failing when it is absent or blank.
func PathParam(params map[string]string, name string) (string, error) {
	v := strings.TrimSpace(params[name])
	if v == "" {
		return "", fmt.Errorf("%w: path parameter %q is required", ErrValidation, name)
	}
	return v, nil
}

// Invoice checks every detail line of inv.
func Invoice(inv models.Invoice) error {
	for i, d := range inv.Details {
		if err := Detail(d); err != nil {
			return fmt.Errorf("details[%d]: %w", i, err)
		}
	}
	return nil
}

// Detail checks that a line has a description and no negative figures.
func Detail(d models.Detail) error {
	validators := []func() error{
		func() error { return DescriptionOK(d.Description) },
		func() error { return nonNegative("unitCost", d.UnitCost) },
		func() error { return QuantityOK(d.Quantity) },
		func() error { return nonNegative("amount", d.Amount) },
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// DescriptionOK checks that the description is non-empty after trimming whitespace.
func DescriptionOK(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: description required", ErrValidation)
	}
	return nil
}

// QuantityOK checks that the quantity is not negative.
func QuantityOK(q int) error {
	if q < 0 {
		return fmt.Errorf("%w: quantity must be >= 0", ErrValidation)
	}
	return nil
}

func nonNegative(field string, m models.Money) error {
	if m.IsNegative() {
		return fmt.Errorf("%w: %s must be >= 0", ErrValidation, field)
	}
	return nil
}
