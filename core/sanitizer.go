package core

import (
	"math"
	"time"

	"aerograph/models"
)

const untitledWorkflow = "Untitled Workflow"

// SanitizeWorkflow coerces raw into a fully populated workflow. It never fails
// and applying it to its own output returns the same record.
func SanitizeWorkflow(raw any) models.Workflow {
	obj, ok := asObject(raw)
	if !ok {
		obj = map[string]any{}
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return models.Workflow{
		ID:                 textField(obj, "id", ""),
		Name:               textField(obj, "name", untitledWorkflow),
		Description:        textField(obj, "description", ""),
		SubdomainID:        optionalText(obj, "subdomain_id"),
		Complexity:         clampedField(obj, "complexity", 3, 1, 5),
		AgenticPotential:   clampedField(obj, "agentic_potential", 3, 1, 5),
		AutonomyLevel:      clampedField(obj, "autonomy_level", 3, 1, 5),
		ImplementationWave: clampedField(obj, "implementation_wave", 1, 1, 3),
		Status:             textField(obj, "status", ""),
		AirlineType:        textList(obj, "airline_type"),
		AIEnablers:         textList(obj, "ai_enablers"),
		SystemsInvolved:    textList(obj, "systems_involved"),
		BusinessContext:    textField(obj, "business_context", ""),
		ExpectedROI:        optionalText(obj, "expected_roi"),
		Dependencies:       textList(obj, "dependencies"),
		CreatedAt:          textField(obj, "created_at", now),
		UpdatedAt:          textField(obj, "updated_at", now),
	}
}

func textField(obj map[string]any, key, def string) string {
	if s, ok := toText(obj[key]); ok && s != "" {
		return s
	}
	return def
}

func optionalText(obj map[string]any, key string) *string {
	if s, ok := toText(obj[key]); ok && s != "" {
		return &s
	}
	return nil
}

// clampedField rounds a numeric field into [lo, hi], using def when absent or not numeric
func clampedField(obj map[string]any, key string, def, lo, hi int) int {
	n, ok := toNumber(obj[key])
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return def
	}
	n = math.Round(n)
	if n < float64(lo) {
		return lo
	}
	if n > float64(hi) {
		return hi
	}
	return int(n)
}

// textList keeps the scalar elements of a sequence field; anything else becomes empty
func textList(obj map[string]any, key string) []string {
	items, ok := asSequence(obj[key])
	out := make([]string, 0, len(items))
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := toText(item); ok {
			out = append(out, s)
		}
	}
	return out
}
