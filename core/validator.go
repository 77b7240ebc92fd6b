package core

import (
	"context"
	"fmt"
	"strings"

	"aerograph/models"

	"github.com/go-playground/validator/v10"
)

// ValidationReporter receives one entry per failed check
type ValidationReporter interface {
	LogValidationError(ctx context.Context, message string, details map[string]any, label string) models.ErrorLogEntry
}

// rangeRule bounds one numeric workflow field. Rules run in slice order.
type rangeRule struct {
	field    string
	tag      string
	min, max int
}

var workflowRangeRules = []rangeRule{
	{field: "complexity", tag: "gte=1,lte=5", min: 1, max: 5},
	{field: "agentic_potential", tag: "gte=1,lte=5", min: 1, max: 5},
	{field: "implementation_wave", tag: "gte=1,lte=3", min: 1, max: 3},
}

var kindTitles = map[models.EntityKind]string{
	models.KindWorkflow:  "Workflow",
	models.KindDomain:    "Domain",
	models.KindSubdomain: "Subdomain",
}

// Validator checks catalog records before they are displayed or persisted.
// It never returns errors: a failed check returns false and logs exactly once.
type Validator struct {
	reporter ValidationReporter
	validate *validator.Validate
}

// NewValidator creates a Validator that reports failures to reporter
func NewValidator(reporter ValidationReporter) *Validator {
	return &Validator{
		reporter: reporter,
		validate: validator.New(),
	}
}

func (v *Validator) fail(ctx context.Context, kind models.EntityKind, message string, details map[string]any, label string) bool {
	validationFailuresTotal.WithLabelValues(string(kind)).Inc()
	if v.reporter != nil {
		v.reporter.LogValidationError(ctx, message, details, label)
	}
	return false
}

// ValidateEntity checks data against the required shape of kind.
// Rules run in order: object check, required fields, then workflow ranges.
func (v *Validator) ValidateEntity(ctx context.Context, kind models.EntityKind, data any, label string) bool {
	required, ok := models.RequiredFields[kind]
	if !ok {
		return v.fail(ctx, kind, fmt.Sprintf("Unknown entity kind %q", kind), map[string]any{"kind": string(kind)}, label)
	}
	title := kindTitles[kind]

	obj, ok := asObject(data)
	if !ok {
		return v.fail(ctx, kind, fmt.Sprintf("Invalid %s data: expected an object", strings.ToLower(title)), map[string]any{
			"receivedType": typeName(data),
			"data":         data,
		}, label)
	}

	var missing []string
	for _, field := range required {
		if val, present := obj[field]; !present || val == nil {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return v.fail(ctx, kind, fmt.Sprintf("%s is missing required fields: %s", title, strings.Join(missing, ", ")), map[string]any{
			"missingFields": missing,
			"data":          obj,
		}, label)
	}

	if kind == models.KindWorkflow {
		for _, rule := range workflowRangeRules {
			raw, present := obj[rule.field]
			if !present || raw == nil {
				continue
			}
			n, isNum := toNumber(raw)
			if !isNum {
				return v.fail(ctx, kind, fmt.Sprintf("Workflow %s must be a number", rule.field), map[string]any{
					"field": rule.field,
					"value": raw,
					"id":    obj["id"],
					"data":  obj,
				}, label)
			}
			if err := v.validate.Var(n, rule.tag); err != nil {
				return v.fail(ctx, kind, fmt.Sprintf("Workflow %s must be between %d and %d", rule.field, rule.min, rule.max), map[string]any{
					"field": rule.field,
					"value": raw,
					"id":    obj["id"],
					"data":  obj,
				}, label)
			}
		}
	}

	return true
}

// ValidateWorkflow checks a single workflow record
func (v *Validator) ValidateWorkflow(ctx context.Context, data any, label string) bool {
	return v.ValidateEntity(ctx, models.KindWorkflow, data, label)
}

// ValidateDomain checks a single domain record
func (v *Validator) ValidateDomain(ctx context.Context, data any, label string) bool {
	return v.ValidateEntity(ctx, models.KindDomain, data, label)
}

// ValidateSubdomain checks a single subdomain record
func (v *Validator) ValidateSubdomain(ctx context.Context, data any, label string) bool {
	return v.ValidateEntity(ctx, models.KindSubdomain, data, label)
}

// ValidateWorkflowWithRelations validates a workflow, then its embedded
// subdomain, then that subdomain's embedded domain. It stops at the first failure.
func (v *Validator) ValidateWorkflowWithRelations(ctx context.Context, data any, label string) bool {
	if !v.ValidateEntity(ctx, models.KindWorkflow, data, label) {
		return false
	}

	obj, _ := asObject(data)
	sub, ok := obj["subdomain"]
	if !ok || sub == nil {
		return true
	}
	if !v.ValidateEntity(ctx, models.KindSubdomain, sub, nestedLabel(label, "subdomain")) {
		return false
	}

	subObj, _ := asObject(sub)
	dom, ok := subObj["domain"]
	if !ok || dom == nil {
		return true
	}
	return v.ValidateEntity(ctx, models.KindDomain, dom, nestedLabel(label, "subdomain.domain"))
}

// ValidateCollection validates every element of data as kind. All elements
// are checked even after a failure, so each bad record gets its own entry.
func (v *Validator) ValidateCollection(ctx context.Context, kind models.EntityKind, data any, label string) bool {
	if label == "" {
		label = string(kind)
	}

	items, ok := asSequence(data)
	if !ok {
		return v.fail(ctx, kind, fmt.Sprintf("Invalid %s collection: expected an array", kind), map[string]any{
			"receivedType": typeName(data),
			"data":         data,
		}, label)
	}

	valid := true
	for i, item := range items {
		itemLabel := fmt.Sprintf("%s[%d]", label, i)
		var ok bool
		if kind == models.KindWorkflowWithRelations {
			ok = v.ValidateWorkflowWithRelations(ctx, item, itemLabel)
		} else {
			ok = v.ValidateEntity(ctx, kind, item, itemLabel)
		}
		if !ok {
			valid = false
		}
	}
	return valid
}

func nestedLabel(label, suffix string) string {
	if label == "" {
		return suffix
	}
	return label + "." + suffix
}
