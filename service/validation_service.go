package service

import (
	"aerograph/core"
	"aerograph/models"
	"context"
	"fmt"
	"reflect"
)

// ValidationResult reports the outcome of a validate request
type ValidationResult struct {
	Valid   bool              `json:"valid"`
	Kind    models.EntityKind `json:"kind"`
	Checked int               `json:"checked"`
}

// CompareRequest asks for a schema comparison against an explicit field list or a known kind
type CompareRequest struct {
	Data           any               `json:"data"`
	ExpectedFields []string          `json:"expected_fields"`
	Kind           models.EntityKind `json:"kind"`
	Label          string            `json:"label"`
}

// ValidationService dispatches validate, sanitize and compare requests to the Validator
type ValidationService struct {
	validator *core.Validator
}

// NewValidationService constructs a validation service
func NewValidationService(v *core.Validator) *ValidationService {
	return &ValidationService{validator: v}
}

func knownKind(kind models.EntityKind) bool {
	switch kind {
	case models.KindWorkflow, models.KindDomain, models.KindSubdomain, models.KindWorkflowWithRelations:
		return true
	default:
		return false
	}
}

// Validate checks payload as kind. Array payloads, or any payload when
// collection is set, are validated element by element.
func (s *ValidationService) Validate(ctx context.Context, kind models.EntityKind, payload any, label string, collection bool) (ValidationResult, error) {
	if !knownKind(kind) {
		return ValidationResult{}, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}

	result := ValidationResult{Kind: kind, Checked: 1}
	if collection || isSequence(payload) {
		result.Checked = sequenceLen(payload)
		result.Valid = s.validator.ValidateCollection(ctx, kind, payload, label)
		return result, nil
	}

	if kind == models.KindWorkflowWithRelations {
		result.Valid = s.validator.ValidateWorkflowWithRelations(ctx, payload, label)
	} else {
		result.Valid = s.validator.ValidateEntity(ctx, kind, payload, label)
	}
	return result, nil
}

// Sanitize repairs one workflow, or each workflow of an array payload
func (s *ValidationService) Sanitize(payload any) any {
	if items, ok := payload.([]any); ok {
		out := make([]models.Workflow, 0, len(items))
		for _, item := range items {
			out = append(out, core.SanitizeWorkflow(item))
		}
		return out
	}
	return core.SanitizeWorkflow(payload)
}

// Compare diffs req.Data against the requested field list
func (s *ValidationService) Compare(ctx context.Context, req CompareRequest) (models.SchemaComparison, error) {
	expected := req.ExpectedFields
	if len(expected) == 0 {
		if req.Kind == "" {
			return models.SchemaComparison{}, fmt.Errorf("%w: expected_fields or kind is required", core.ErrInvalidRequest)
		}
		expected = models.ExpectedFields(req.Kind)
		if expected == nil {
			return models.SchemaComparison{}, fmt.Errorf("%w: %q", core.ErrUnknownKind, req.Kind)
		}
	}
	return s.validator.CompareSchema(ctx, req.Data, expected, req.Label), nil
}

func isSequence(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func sequenceLen(v any) int {
	if !isSequence(v) {
		return 0
	}
	return reflect.ValueOf(v).Len()
}
