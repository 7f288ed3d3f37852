package core

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"floodroute/internal/types"
)

// Validator wraps go-playground/validator for request DTO validation.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with struct-tag validation enabled.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateStruct validates a request DTO against its struct tags. Violations
// are reported as a single AppError with per-field details; clients receive
// the tag name, not the internal validator message.
func (v *Validator) ValidateStruct(dst any) error {
	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"validation was applied to a non-struct value",
			err,
		)
	}

	var violations validator.ValidationErrors
	if errors.As(err, &violations) {
		fields := make(map[string]any, len(violations))
		for _, fe := range violations {
			fields[fe.Field()] = fe.Tag()
		}
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidField,
			"request failed validation",
			err,
			map[string]any{"fields": fields},
		)
	}

	return types.NewAppError(types.ErrCodeInternalUnexpected, "validation failed", err)
}
