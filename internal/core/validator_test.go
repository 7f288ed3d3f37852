package core

import (
	"errors"
	"testing"

	"floodroute/internal/types"
)

func TestValidateStruct_Valid(t *testing.T) {
	v := NewValidator()

	req := types.AssessRequest{City: "Shah Alam", UrgencyScore: 7.5}
	if err := v.ValidateStruct(req); err != nil {
		t.Errorf("expected valid request, got: %v", err)
	}
}

func TestValidateStruct_ViolationsReportFields(t *testing.T) {
	v := NewValidator()

	req := types.AssessRequest{City: "Shah Alam", UrgencyScore: 15}
	err := v.ValidateStruct(req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeValidationInvalidField {
		t.Errorf("expected validation_invalid_field, got %s", appErr.Code)
	}

	fields, ok := appErr.Details["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected fields map in details, got %v", appErr.Details)
	}
	if tag, ok := fields["UrgencyScore"]; !ok || tag != "lte" {
		t.Errorf("expected UrgencyScore=lte in violations, got %v", fields)
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(42)
	if err == nil {
		t.Fatal("expected error for a non-struct value")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeInternalUnexpected {
		t.Errorf("expected internal_unexpected_error, got %s", appErr.Code)
	}
}
