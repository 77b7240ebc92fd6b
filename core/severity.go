package core

import (
	"strings"

	"aerograph/models"
)

var severityKeywords = []struct {
	severity models.Severity
	words    []string
}{
	{models.SeverityCritical, []string{"permission", "authentication", "authorization"}},
	{models.SeverityHigh, []string{"network", "timeout", "connection"}},
	{models.SeverityMedium, []string{"not found", "invalid"}},
}

// ClassifySeverity derives a severity from error message text.
// Checks run from most to least severe; the first keyword hit wins.
func ClassifySeverity(message string) models.Severity {
	msg := strings.ToLower(message)
	for _, rule := range severityKeywords {
		for _, w := range rule.words {
			if strings.Contains(msg, w) {
				return rule.severity
			}
		}
	}
	return models.SeverityLow
}

// consoleLevel maps a severity to the console line level
func consoleLevel(s models.Severity) string {
	switch s {
	case models.SeverityCritical, models.SeverityHigh:
		return "ERROR"
	case models.SeverityMedium:
		return "WARN"
	default:
		return "INFO"
	}
}
