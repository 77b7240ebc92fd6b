package models

import "time"

// Category classifies where an error originated
type Category string

const (
	CategoryDatabase   Category = "database"
	CategoryNetwork    Category = "network"
	CategoryValidation Category = "validation"
	CategoryRuntime    Category = "runtime"
	CategoryUnknown    Category = "unknown"
)

// Categories lists every category in display order
var Categories = []Category{CategoryDatabase, CategoryNetwork, CategoryValidation, CategoryRuntime, CategoryUnknown}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity ranks the impact of an error
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity from least to most severe
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	for _, known := range Severities {
		if s == known {
			return true
		}
	}
	return false
}

// DetailsKind tags the shape carried by ErrorDetails
type DetailsKind string

const (
	DetailsNone    DetailsKind = "none"
	DetailsMessage DetailsKind = "message" // plain string
	DetailsError   DetailsKind = "error"   // native error fields
	DetailsJSON    DetailsKind = "json"    // opaque JSON value
)

// ErrorDetails is a sanitized copy of whatever triggered a log entry.
// Only the fields that belong to Kind are populated.
type ErrorDetails struct {
	Kind    DetailsKind `json:"kind"`
	Name    string      `json:"name,omitempty"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details string      `json:"details,omitempty"`
	Hint    string      `json:"hint,omitempty"`
	Data    any         `json:"data,omitempty"`
}

// LogContext carries optional request metadata for an entry
type LogContext struct {
	User      string `json:"user,omitempty"`
	Route     string `json:"route,omitempty"`
	Operation string `json:"operation,omitempty"`
	Table     string `json:"table,omitempty"`
	Query     string `json:"query,omitempty"`
}

// ErrorLogEntry is one observed failure. Entries are never modified after creation.
type ErrorLogEntry struct {
	ID         string       `json:"id"`
	Timestamp  time.Time    `json:"timestamp"`
	Category   Category     `json:"category"`
	Severity   Severity     `json:"severity"`
	Message    string       `json:"message"`
	Details    ErrorDetails `json:"details"`
	StackTrace string       `json:"stackTrace,omitempty"`
	Context    *LogContext  `json:"context,omitempty"`
}

// LogFilter narrows GetLogs results. Zero values mean "no constraint".
type LogFilter struct {
	Category  Category
	Severity  Severity
	StartDate time.Time // inclusive
	EndDate   time.Time // inclusive
	Limit     int
}

// LogStats summarizes the error log buffer
type LogStats struct {
	Total         int              `json:"total"`
	ByCategory    map[Category]int `json:"byCategory"`
	BySeverity    map[Severity]int `json:"bySeverity"`
	RecentCount   int              `json:"recentCount"`
	CriticalCount int              `json:"criticalCount"`
}

// DatabaseError mirrors the structured error body returned by the remote catalog store
type DatabaseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *DatabaseError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// ClientErrorReport is an error reported by a client of the diagnostics API
type ClientErrorReport struct {
	Message  string      `json:"message" binding:"required"`
	Category Category    `json:"category"`
	Severity Severity    `json:"severity"`
	Error    any         `json:"error"`
	Context  *LogContext `json:"context"`
	Label    string      `json:"label"`
}
