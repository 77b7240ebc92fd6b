package service

import (
	"aerograph/core"
	"aerograph/models"
	"context"
	"fmt"
	"strings"
	"time"
)

// LogQuery is the raw, string-typed filter accepted from HTTP and CLI callers
type LogQuery struct {
	Category string `form:"category"`
	Severity string `form:"severity"`
	Start    string `form:"start"`
	End      string `form:"end"`
	Limit    int    `form:"limit"`
}

// ParseFilter validates q and converts it into a LogFilter
func ParseFilter(q LogQuery) (models.LogFilter, error) {
	var f models.LogFilter

	if c := strings.ToLower(strings.TrimSpace(q.Category)); c != "" {
		f.Category = models.Category(c)
		if !f.Category.Valid() {
			return f, fmt.Errorf("%w: unknown category %q", core.ErrInvalidRequest, q.Category)
		}
	}
	if s := strings.ToLower(strings.TrimSpace(q.Severity)); s != "" {
		f.Severity = models.Severity(s)
		if !f.Severity.Valid() {
			return f, fmt.Errorf("%w: unknown severity %q", core.ErrInvalidRequest, q.Severity)
		}
	}

	var err error
	if f.StartDate, err = parseTimeParam("start", q.Start); err != nil {
		return f, err
	}
	if f.EndDate, err = parseTimeParam("end", q.End); err != nil {
		return f, err
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && f.EndDate.Before(f.StartDate) {
		return f, fmt.Errorf("%w: end is before start", core.ErrInvalidRequest)
	}

	if q.Limit < 0 {
		return f, fmt.Errorf("%w: limit must not be negative", core.ErrInvalidRequest)
	}
	f.Limit = q.Limit
	return f, nil
}

func parseTimeParam(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be an ISO-8601 timestamp: %v", core.ErrInvalidRequest, name, err)
	}
	return t, nil
}

// LogService exposes the error log to the API and records client reports
type LogService struct {
	logger *core.ErrorLogger
}

// NewLogService constructs a log service
func NewLogService(logger *core.ErrorLogger) *LogService {
	return &LogService{logger: logger}
}

// Logger returns the underlying logger
func (s *LogService) Logger() *core.ErrorLogger {
	return s.logger
}

// List returns entries matching q, newest first
func (s *LogService) List(q LogQuery) ([]models.ErrorLogEntry, error) {
	filter, err := ParseFilter(q)
	if err != nil {
		return nil, err
	}
	return s.logger.GetLogs(filter), nil
}

// Stats summarizes the buffer
func (s *LogService) Stats() models.LogStats {
	return s.logger.GetStats()
}

// Clear empties the buffer
func (s *LogService) Clear() {
	s.logger.ClearAll()
}

// Export renders the buffer as indented JSON
func (s *LogService) Export() (string, error) {
	return s.logger.ExportJSON()
}

// Report records an error sent by a client, routing it by category
func (s *LogService) Report(ctx context.Context, r models.ClientErrorReport) (models.ErrorLogEntry, error) {
	message := strings.TrimSpace(r.Message)
	if message == "" {
		return models.ErrorLogEntry{}, fmt.Errorf("%w: message is required", core.ErrInvalidRequest)
	}

	switch r.Category {
	case models.CategoryDatabase:
		return s.logger.LogDatabaseError(ctx, message, r.Error, r.Context), nil
	case models.CategoryNetwork:
		return s.logger.LogNetworkError(ctx, message, r.Error, r.Context), nil
	case models.CategoryValidation:
		details, ok := r.Error.(map[string]any)
		if !ok {
			details = map[string]any{}
			if r.Error != nil {
				details["error"] = r.Error
			}
		}
		return s.logger.LogValidationError(ctx, message, details, r.Label), nil
	default:
		return s.logger.LogError(ctx, message, r.Error, r.Category, r.Severity), nil
	}
}
