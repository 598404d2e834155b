package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Predefined errors for entity invariants. All of them wrap ErrValidation so callers
// can reject a whole class of input with a single errors.Is check.
var (
	ErrValidation         = errors.New("domain: validation failed")
	ErrNegativeAmount     = fmt.Errorf("%w: amount must not be negative", ErrValidation)
	ErrAmountOutOfRange   = fmt.Errorf("%w: amount exceeds numeric(18,2)", ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrQuantityOutOfRange = fmt.Errorf("%w: quantity exceeds integer range", ErrValidation)
	ErrInsufficientStock  = fmt.Errorf("%w: stock must not go below zero", ErrValidation)
	ErrMissingReference   = fmt.Errorf("%w: required reference is empty", ErrValidation)
	ErrCategoryCycle      = fmt.Errorf("%w: category cannot be its own ancestor", ErrValidation)
	ErrUnknownStatus      = fmt.Errorf("%w: unknown status", ErrValidation)
	ErrZeroMovement       = fmt.Errorf("%w: inventory movement quantity must be non-zero", ErrValidation)
	ErrMalformedPayload   = fmt.Errorf("%w: audit payload is not valid JSON", ErrValidation)
)

var validate = validator.New()

// validateEntity runs the struct tag rules of an entity and folds the validator's
// field errors into ErrValidation.
func validateEntity(entity string, v interface{}) error {
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s.%s failed on '%s'", ErrValidation, entity, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %s: %v", ErrValidation, entity, err)
	}
	return nil
}

func requireID(field string, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: %s", ErrMissingReference, field)
	}
	return nil
}
