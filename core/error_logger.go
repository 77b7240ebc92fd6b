package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"aerograph/models"

	"github.com/google/uuid"
)

const (
	DefaultMaxLogs      = 1000
	DefaultStorageKey   = "airline_error_logs"
	DefaultRecentWindow = time.Hour
	defaultStreamBuffer = 64
)

// ErrorLogger keeps a bounded, durable, newest-first buffer of classified errors.
// Logging calls never fail from the caller's point of view.
type ErrorLogger struct {
	mu           sync.RWMutex
	logs         []models.ErrorLogEntry
	maxLogs      int
	store        Storage
	storageKey   string
	console      *log.Logger
	now          func() time.Time
	recentWindow time.Duration

	subMu        sync.Mutex
	subs         map[int]chan models.ErrorLogEntry
	nextSubID    int
	streamBuffer int
	droppedTotal uint64
}

// Option configures an ErrorLogger
type Option func(*ErrorLogger)

// WithMaxLogs caps the buffer size
func WithMaxLogs(n int) Option {
	return func(e *ErrorLogger) {
		if n > 0 {
			e.maxLogs = n
		}
	}
}

// WithStorageKey sets the key the buffer is persisted under
func WithStorageKey(key string) Option {
	return func(e *ErrorLogger) {
		if key != "" {
			e.storageKey = key
		}
	}
}

// WithConsole routes console echo lines to l
func WithConsole(l *log.Logger) Option {
	return func(e *ErrorLogger) {
		if l != nil {
			e.console = l
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(e *ErrorLogger) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRecentWindow sets how far back GetStats counts an entry as recent
func WithRecentWindow(d time.Duration) Option {
	return func(e *ErrorLogger) {
		if d > 0 {
			e.recentWindow = d
		}
	}
}

// WithStreamBuffer sets the per-subscriber channel capacity
func WithStreamBuffer(n int) Option {
	return func(e *ErrorLogger) {
		if n > 0 {
			e.streamBuffer = n
		}
	}
}

// NewErrorLogger builds a logger backed by store and restores any persisted buffer.
// A nil store keeps the buffer in memory only.
func NewErrorLogger(store Storage, opts ...Option) *ErrorLogger {
	if store == nil {
		store = NewMemoryStorage()
	}
	e := &ErrorLogger{
		maxLogs:      DefaultMaxLogs,
		store:        store,
		storageKey:   DefaultStorageKey,
		console:      log.Default(),
		now:          time.Now,
		recentWindow: DefaultRecentWindow,
		subs:         make(map[int]chan models.ErrorLogEntry),
		streamBuffer: defaultStreamBuffer,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logs = e.load()
	return e
}

// load reads the persisted buffer. Corrupt data is reported to the console only.
func (e *ErrorLogger) load() []models.ErrorLogEntry {
	raw, ok, err := e.store.Get(e.storageKey)
	if err != nil {
		e.console.Printf("WARN [error-logger] failed to read stored error logs: %v", err)
		return make([]models.ErrorLogEntry, 0, e.maxLogs)
	}
	if !ok || raw == "" {
		return make([]models.ErrorLogEntry, 0, e.maxLogs)
	}

	var logs []models.ErrorLogEntry
	if err := json.Unmarshal([]byte(raw), &logs); err != nil {
		e.console.Printf("WARN [error-logger] failed to parse stored error logs: %v", err)
		return make([]models.ErrorLogEntry, 0, e.maxLogs)
	}
	if len(logs) > e.maxLogs {
		logs = logs[:e.maxLogs]
	}
	return logs
}

// LogDatabaseError records a failure reported by the catalog store.
// Severity is derived from the error's message text.
func (e *ErrorLogger) LogDatabaseError(ctx context.Context, message string, rawErr any, lc *models.LogContext) models.ErrorLogEntry {
	details, stack := sanitizeError(rawErr)
	return e.record(ctx, models.CategoryDatabase, ClassifySeverity(detailsMessage(details)), message, details, stack, lc)
}

// LogNetworkError records a transport failure; severity is derived like LogDatabaseError.
// A nil rawErr carries no message to classify and is always low severity.
func (e *ErrorLogger) LogNetworkError(ctx context.Context, message string, rawErr any, lc *models.LogContext) models.ErrorLogEntry {
	details, stack := sanitizeError(rawErr)
	return e.record(ctx, models.CategoryNetwork, ClassifySeverity(detailsMessage(details)), message, details, stack, lc)
}

// LogValidationError records a failed record check at medium severity.
// label, when set, is merged into details under "context".
func (e *ErrorLogger) LogValidationError(ctx context.Context, message string, details map[string]any, label string) models.ErrorLogEntry {
	merged := make(map[string]any, len(details)+1)
	for k, v := range details {
		merged[k] = v
	}
	if label != "" {
		merged["context"] = label
	}

	d := models.ErrorDetails{Kind: models.DetailsJSON}
	data, err := jsonCopy(merged)
	if err != nil {
		d = models.ErrorDetails{Kind: models.DetailsMessage, Message: fmt.Sprint(merged)}
	} else {
		d.Data = data
	}
	return e.record(ctx, models.CategoryValidation, models.SeverityMedium, message, d, "", nil)
}

// LogError records an error with an explicit category and severity.
// Empty or unknown values fall back to runtime and medium.
func (e *ErrorLogger) LogError(ctx context.Context, message string, rawErr any, category models.Category, severity models.Severity) models.ErrorLogEntry {
	if category == "" {
		category = models.CategoryRuntime
	} else if !category.Valid() {
		category = models.CategoryUnknown
	}
	if !severity.Valid() {
		severity = models.SeverityMedium
	}
	details, stack := sanitizeError(rawErr)
	return e.record(ctx, category, severity, message, details, stack, nil)
}

func (e *ErrorLogger) record(ctx context.Context, category models.Category, severity models.Severity, message string, details models.ErrorDetails, stack string, lc *models.LogContext) models.ErrorLogEntry {
	entry := models.ErrorLogEntry{
		ID:         newEntryID(),
		Timestamp:  e.now().UTC(),
		Category:   category,
		Severity:   severity,
		Message:    message,
		Details:    details,
		StackTrace: stack,
		Context:    withRoute(ctx, lc),
	}

	e.mu.Lock()
	e.logs = append(e.logs, models.ErrorLogEntry{})
	copy(e.logs[1:], e.logs)
	e.logs[0] = entry
	if len(e.logs) > e.maxLogs {
		clear(e.logs[e.maxLogs:])
		e.logs = e.logs[:e.maxLogs]
	}
	e.persistLocked()
	e.mu.Unlock()

	errorLogsTotal.WithLabelValues(string(category), string(severity)).Inc()
	e.echo(entry)
	e.publish(entry)
	return cloneEntry(entry)
}

// cloneEntry copies the parts of entry that are shared by reference, so
// callers cannot reach the buffered entry through a returned one.
func cloneEntry(entry models.ErrorLogEntry) models.ErrorLogEntry {
	if entry.Context != nil {
		lc := *entry.Context
		entry.Context = &lc
	}
	if entry.Details.Data != nil {
		if data, err := jsonCopy(entry.Details.Data); err == nil {
			entry.Details.Data = data
		}
	}
	return entry
}

// withRoute copies lc and fills Route from ctx when the caller left it empty
func withRoute(ctx context.Context, lc *models.LogContext) *models.LogContext {
	route := RouteFromContext(ctx)
	if lc == nil {
		if route == "" {
			return nil
		}
		return &models.LogContext{Route: route}
	}
	out := *lc
	if out.Route == "" {
		out.Route = route
	}
	return &out
}

func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// persistLocked mirrors the buffer to storage. Failures stay on the console.
// Caller must hold e.mu.
func (e *ErrorLogger) persistLocked() {
	defer func() {
		if r := recover(); r != nil {
			persistFailuresTotal.Inc()
			e.console.Printf("ERROR [error-logger] storage panicked while saving error logs: %v", r)
		}
	}()

	data, err := json.Marshal(e.logs)
	if err != nil {
		persistFailuresTotal.Inc()
		e.console.Printf("ERROR [error-logger] failed to encode error logs: %v", err)
		return
	}
	if err := e.store.Set(e.storageKey, string(data)); err != nil {
		persistFailuresTotal.Inc()
		e.console.Printf("ERROR [error-logger] failed to save error logs: %v", err)
	}
}

// echo writes a leveled console line, with the stack trace on its own line
func (e *ErrorLogger) echo(entry models.ErrorLogEntry) {
	e.console.Printf("%s [%s/%s] %s (id=%s)", consoleLevel(entry.Severity), entry.Category, entry.Severity, entry.Message, entry.ID)
	if entry.StackTrace != "" {
		e.console.Printf("%s [%s] stack:\n%s", consoleLevel(entry.Severity), entry.ID, entry.StackTrace)
	}
}

// GetLogs returns entries matching filter, newest timestamp first.
// Limit keeps the most recently inserted matches and is applied before sorting.
func (e *ErrorLogger) GetLogs(filter models.LogFilter) []models.ErrorLogEntry {
	e.mu.RLock()
	result := make([]models.ErrorLogEntry, 0, len(e.logs))
	for _, entry := range e.logs {
		if matchesFilter(entry, filter) {
			result = append(result, cloneEntry(entry))
		}
	}
	e.mu.RUnlock()

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

func matchesFilter(entry models.ErrorLogEntry, f models.LogFilter) bool {
	if f.Category != "" && entry.Category != f.Category {
		return false
	}
	if f.Severity != "" && entry.Severity != f.Severity {
		return false
	}
	if !f.StartDate.IsZero() && entry.Timestamp.Before(f.StartDate) {
		return false
	}
	if !f.EndDate.IsZero() && entry.Timestamp.After(f.EndDate) {
		return false
	}
	return true
}

// GetStats summarizes the buffer as of now
func (e *ErrorLogger) GetStats() models.LogStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := models.LogStats{
		Total:      len(e.logs),
		ByCategory: make(map[models.Category]int),
		BySeverity: make(map[models.Severity]int),
	}
	cutoff := e.now().Add(-e.recentWindow)
	for _, entry := range e.logs {
		stats.ByCategory[entry.Category]++
		stats.BySeverity[entry.Severity]++
		if entry.Timestamp.After(cutoff) {
			stats.RecentCount++
		}
		if entry.Severity == models.SeverityCritical {
			stats.CriticalCount++
		}
	}
	return stats
}

// ClearAll empties the buffer and persists the empty state
func (e *ErrorLogger) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logs = make([]models.ErrorLogEntry, 0, e.maxLogs)
	e.persistLocked()
}

// ExportJSON renders the whole buffer as indented JSON
func (e *ErrorLogger) ExportJSON() (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	data, err := json.MarshalIndent(e.logs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export error logs: %w", err)
	}
	return string(data), nil
}

// Len returns the number of buffered entries
func (e *ErrorLogger) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.logs)
}

// Subscribe returns a channel that receives every entry logged after the call.
// Entries are dropped for a subscriber whose channel is full. cancel closes the channel.
func (e *ErrorLogger) Subscribe() (<-chan models.ErrorLogEntry, func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	id := e.nextSubID
	e.nextSubID++
	ch := make(chan models.ErrorLogEntry, e.streamBuffer)
	e.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subs, id)
			close(ch)
			e.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (e *ErrorLogger) publish(entry models.ErrorLogEntry) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- cloneEntry(entry):
		default:
			atomic.AddUint64(&e.droppedTotal, 1)
			streamDroppedTotal.Inc()
		}
	}
}

// StreamDroppedTotal returns how many entries slow subscribers missed
func (e *ErrorLogger) StreamDroppedTotal() uint64 {
	return atomic.LoadUint64(&e.droppedTotal)
}
