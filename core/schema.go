package core

import (
	"context"
	"fmt"
	"sort"

	"aerograph/models"
)

// CompareSchema diffs the keys of data against expected. Extra keys do not
// break the match. When label is set, a mismatch is logged once.
func (v *Validator) CompareSchema(ctx context.Context, data any, expected []string, label string) models.SchemaComparison {
	obj, ok := asObject(data)
	if !ok {
		missing := append([]string{}, expected...)
		return models.SchemaComparison{IsMatch: false, MissingFields: missing, ExtraFields: []string{}}
	}

	expectedSet := make(map[string]struct{}, len(expected))
	missing := []string{}
	for _, field := range expected {
		expectedSet[field] = struct{}{}
		if _, present := obj[field]; !present {
			missing = append(missing, field)
		}
	}

	extra := []string{}
	for key := range obj {
		if _, known := expectedSet[key]; !known {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)

	result := models.SchemaComparison{
		IsMatch:       len(missing) == 0,
		MissingFields: missing,
		ExtraFields:   extra,
	}

	if label != "" && !result.IsMatch {
		validationFailuresTotal.WithLabelValues("schema").Inc()
		if v.reporter != nil {
			v.reporter.LogValidationError(ctx, fmt.Sprintf("Schema mismatch for %s", label), map[string]any{
				"missingFields": missing,
				"extraFields":   extra,
			}, label)
		}
	}
	return result
}
