// Package validator adapts go-playground/validator to Echo's Validator
// interface so handlers can rely on struct tags for input validation.
package validator

import (
	playground "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Validator wraps a shared validator instance.
type Validator struct {
	validate *playground.Validate
}

// New builds the validator Echo will call for every bound request body.
func New() *Validator {
	return &Validator{validate: playground.New(playground.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return errors.Wrap(err, "request validation failed")
	}

	return nil
}
