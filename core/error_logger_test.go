package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"aerograph/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

func newStepClock(start time.Time, step time.Duration) *stepClock {
	return &stepClock{next: start, step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = t
}

type failingStorage struct {
	getErr error
	setErr error
	panics bool
	writes int
}

func (f *failingStorage) Get(string) (string, bool, error) {
	return "", false, f.getErr
}

func (f *failingStorage) Set(string, string) error {
	f.writes++
	if f.panics {
		panic("disk on fire")
	}
	return f.setErr
}

func quietConsole() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestLogger(t *testing.T, store Storage, opts ...Option) *ErrorLogger {
	t.Helper()
	opts = append([]Option{WithConsole(quietConsole())}, opts...)
	return NewErrorLogger(store, opts...)
}

func TestErrorLogger_EvictsOldestBeyondCapacity(t *testing.T) {
	logger := newTestLogger(t, NewMemoryStorage())

	for i := 1; i <= DefaultMaxLogs+1; i++ {
		logger.LogError(context.Background(), fmt.Sprintf("entry-%d", i), nil, models.CategoryRuntime, models.SeverityLow)
		require.LessOrEqual(t, logger.Len(), DefaultMaxLogs)
	}

	logs := logger.GetLogs(models.LogFilter{})
	require.Len(t, logs, DefaultMaxLogs)

	seen := make(map[string]bool, len(logs))
	for _, entry := range logs {
		seen[entry.Message] = true
	}
	assert.False(t, seen["entry-1"], "oldest entry should have been evicted")
	for i := 2; i <= DefaultMaxLogs+1; i++ {
		assert.True(t, seen[fmt.Sprintf("entry-%d", i)], "entry-%d missing", i)
	}
}

func TestErrorLogger_SmallCapacityKeepsNewest(t *testing.T) {
	logger := newTestLogger(t, nil, WithMaxLogs(3))
	for i := 0; i < 5; i++ {
		logger.LogError(context.Background(), fmt.Sprintf("m%d", i), nil, "", "")
	}

	logs := logger.GetLogs(models.LogFilter{})
	require.Len(t, logs, 3)
	got := []string{logs[0].Message, logs[1].Message, logs[2].Message}
	assert.ElementsMatch(t, []string{"m2", "m3", "m4"}, got)
}

func TestErrorLogger_DatabaseSeverityDerivation(t *testing.T) {
	tests := []struct {
		raw  any
		want models.Severity
	}{
		{map[string]any{"message": "permission denied"}, models.SeverityCritical},
		{map[string]any{"message": "Authentication required"}, models.SeverityCritical},
		{map[string]any{"message": "request timeout"}, models.SeverityHigh},
		{errors.New("connection reset by peer"), models.SeverityHigh},
		{map[string]any{"message": "record not found"}, models.SeverityMedium},
		{&models.DatabaseError{Code: "22P02", Message: "invalid input syntax"}, models.SeverityMedium},
		{map[string]any{"message": "oops"}, models.SeverityLow},
		{"plain string failure", models.SeverityLow},
		{nil, models.SeverityLow},
	}

	logger := newTestLogger(t, nil)
	for _, tt := range tests {
		entry := logger.LogDatabaseError(context.Background(), "x", tt.raw, nil)
		assert.Equal(t, tt.want, entry.Severity, "raw=%v", tt.raw)
		assert.Equal(t, models.CategoryDatabase, entry.Category)
	}
}

func TestErrorLogger_NetworkErrorWithoutCauseIsLow(t *testing.T) {
	logger := newTestLogger(t, nil)

	entry := logger.LogNetworkError(context.Background(), "request timeout", nil, nil)
	assert.Equal(t, models.SeverityLow, entry.Severity)
	assert.Equal(t, models.DetailsNone, entry.Details.Kind)

	entry = logger.LogNetworkError(context.Background(), "request failed", errors.New("i/o timeout"), nil)
	assert.Equal(t, models.SeverityHigh, entry.Severity)
}

func TestErrorLogger_SanitizesStructuredErrors(t *testing.T) {
	logger := newTestLogger(t, nil)

	dbErr := fmt.Errorf("load workflows: %w", &models.DatabaseError{
		Code: "42501", Message: "permission denied for table workflows", Details: "row level security", Hint: "check policies",
	})
	entry := logger.LogDatabaseError(context.Background(), "Failed to load workflows", dbErr, &models.LogContext{Table: "workflows", Operation: "select"})

	assert.Equal(t, models.DetailsError, entry.Details.Kind)
	assert.Equal(t, "DatabaseError", entry.Details.Name)
	assert.Equal(t, "42501", entry.Details.Code)
	assert.Equal(t, "row level security", entry.Details.Details)
	assert.Equal(t, "check policies", entry.Details.Hint)
	assert.Equal(t, models.SeverityCritical, entry.Severity)
	require.NotNil(t, entry.Context)
	assert.Equal(t, "workflows", entry.Context.Table)

	plain := logger.LogDatabaseError(context.Background(), "x", "boom", nil)
	assert.Equal(t, models.ErrorDetails{Kind: models.DetailsMessage, Message: "boom"}, plain.Details)

	blob := logger.LogDatabaseError(context.Background(), "x", []int{1, 2}, nil)
	assert.Equal(t, models.DetailsJSON, blob.Details.Kind)
	assert.Equal(t, []any{float64(1), float64(2)}, blob.Details.Data)

	unencodable := logger.LogDatabaseError(context.Background(), "x", func() {}, nil)
	assert.Equal(t, models.DetailsMessage, unencodable.Details.Kind)
}

func TestErrorLogger_DetailsDoNotAliasCaller(t *testing.T) {
	logger := newTestLogger(t, nil)
	payload := map[string]any{"field": "complexity"}

	entry := logger.LogValidationError(context.Background(), "bad", payload, "workflows[0]")
	payload["field"] = "mutated"

	data, ok := entry.Details.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "complexity", data["field"])
	assert.Equal(t, "workflows[0]", data["context"])
	assert.Equal(t, models.SeverityMedium, entry.Severity)
	assert.Equal(t, models.CategoryValidation, entry.Category)
}

func TestErrorLogger_ReturnedEntriesDoNotAliasBuffer(t *testing.T) {
	logger := newTestLogger(t, nil)
	ctx := WithRoute(context.Background(), "POST /api/validate/:kind")

	entries, cancel := logger.Subscribe()
	defer cancel()

	logged := logger.LogValidationError(ctx, "bad", map[string]any{"field": "a"}, "lbl")
	streamed := <-entries
	got := logger.GetLogs(models.LogFilter{})
	require.Len(t, got, 1)

	for _, e := range []models.ErrorLogEntry{logged, streamed, got[0]} {
		require.NotNil(t, e.Context)
		e.Context.Route = "changed"
		e.Details.Data.(map[string]any)["field"] = "changed"
	}

	again := logger.GetLogs(models.LogFilter{})
	require.Len(t, again, 1)
	assert.Equal(t, "POST /api/validate/:kind", again[0].Context.Route)
	assert.Equal(t, "a", again[0].Details.Data.(map[string]any)["field"])

	exported, err := logger.ExportJSON()
	require.NoError(t, err)
	assert.NotContains(t, exported, "changed")
}

func TestErrorLogger_StackTraceOnlyWhenExposed(t *testing.T) {
	logger := newTestLogger(t, nil)

	withStack := logger.LogError(context.Background(), "panic", &PanicError{Value: "nil map", Stack: "main.go:12 main.main\n"}, models.CategoryRuntime, models.SeverityCritical)
	assert.Equal(t, "main.go:12 main.main\n", withStack.StackTrace)

	withoutStack := logger.LogError(context.Background(), "plain", errors.New("nope"), models.CategoryRuntime, models.SeverityLow)
	assert.Empty(t, withoutStack.StackTrace)
}

func TestErrorLogger_LogErrorDefaults(t *testing.T) {
	logger := newTestLogger(t, nil)

	entry := logger.LogError(context.Background(), "x", nil, "", "")
	assert.Equal(t, models.CategoryRuntime, entry.Category)
	assert.Equal(t, models.SeverityMedium, entry.Severity)

	odd := logger.LogError(context.Background(), "x", nil, "gremlins", "apocalyptic")
	assert.Equal(t, models.CategoryUnknown, odd.Category)
	assert.Equal(t, models.SeverityMedium, odd.Severity)
}

func TestErrorLogger_UniqueIDs(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	logger := newTestLogger(t, nil, WithClock(func() time.Time { return frozen }))

	ids := make(map[string]bool)
	for i := 0; i < 200; i++ {
		entry := logger.LogError(context.Background(), "same millisecond", nil, "", "")
		require.False(t, ids[entry.ID], "duplicate id %s", entry.ID)
		ids[entry.ID] = true
	}
}

func TestErrorLogger_GetLogsSortedNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := newStepClock(base, 0)
	logger := newTestLogger(t, nil, WithClock(clock.Now))

	offsets := []int{5, 1, 9, 3, 7}
	for _, off := range offsets {
		clock.Set(base.Add(time.Duration(off) * time.Minute))
		logger.LogError(context.Background(), fmt.Sprintf("t+%d", off), nil, models.CategoryRuntime, models.SeverityMedium)
	}

	logs := logger.GetLogs(models.LogFilter{})
	require.Len(t, logs, len(offsets))
	for i := 1; i < len(logs); i++ {
		assert.False(t, logs[i].Timestamp.After(logs[i-1].Timestamp), "entries out of order at %d", i)
	}
	assert.Equal(t, "t+9", logs[0].Message)
	assert.Equal(t, "t+1", logs[len(logs)-1].Message)
}

func TestErrorLogger_FilterComposition(t *testing.T) {
	clock := newStepClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Second)
	logger := newTestLogger(t, nil, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		logger.LogValidationError(context.Background(), fmt.Sprintf("v%d", i), nil, "")
	}
	logger.LogError(context.Background(), "r", nil, models.CategoryRuntime, models.SeverityMedium)
	logger.LogDatabaseError(context.Background(), "d", "permission denied", nil)
	logger.LogError(context.Background(), "n", nil, models.CategoryNetwork, models.SeverityHigh)

	logs := logger.GetLogs(models.LogFilter{Category: models.CategoryValidation, Severity: models.SeverityMedium, Limit: 2})
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, models.CategoryValidation, entry.Category)
		assert.Equal(t, models.SeverityMedium, entry.Severity)
	}
	assert.Equal(t, "v4", logs[0].Message)
	assert.Equal(t, "v3", logs[1].Message)
}

func TestErrorLogger_FilterByDateRange(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := newStepClock(base, time.Minute)
	logger := newTestLogger(t, nil, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		logger.LogError(context.Background(), fmt.Sprintf("m%d", i), nil, "", "")
	}

	logs := logger.GetLogs(models.LogFilter{StartDate: base.Add(time.Minute), EndDate: base.Add(3 * time.Minute)})
	require.Len(t, logs, 3)
	assert.Equal(t, "m3", logs[0].Message)
	assert.Equal(t, "m1", logs[2].Message)
}

func TestErrorLogger_StatsCountsEveryEntryOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := newStepClock(now, 0)
	logger := newTestLogger(t, nil, WithClock(clock.Now))

	clock.Set(now.Add(-2 * time.Hour))
	logger.LogDatabaseError(context.Background(), "old", "permission denied", nil)
	clock.Set(now.Add(-10 * time.Minute))
	logger.LogDatabaseError(context.Background(), "recent", "authorization failed", nil)
	logger.LogValidationError(context.Background(), "recent validation", nil, "")
	clock.Set(now)

	stats := logger.GetStats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByCategory[models.CategoryDatabase])
	assert.Equal(t, 1, stats.ByCategory[models.CategoryValidation])
	assert.Equal(t, 2, stats.BySeverity[models.SeverityCritical])
	assert.Equal(t, 1, stats.BySeverity[models.SeverityMedium])
	assert.Equal(t, 2, stats.CriticalCount)
	assert.Equal(t, 2, stats.RecentCount)
}

func TestErrorLogger_ExportRoundTrip(t *testing.T) {
	clock := newStepClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 1500*time.Microsecond)
	logger := newTestLogger(t, nil, WithClock(clock.Now))

	logger.LogDatabaseError(context.Background(), "db", &models.DatabaseError{Code: "PGRST116", Message: "not found"}, &models.LogContext{Table: "domains"})
	logger.LogValidationError(context.Background(), "v", map[string]any{"missingFields": []string{"id"}}, "domains[2]")
	logger.LogError(context.Background(), "r", "boom", models.CategoryRuntime, models.SeverityHigh)

	exported, err := logger.ExportJSON()
	require.NoError(t, err)
	assert.True(t, strings.Contains(exported, "\n  "), "export should be indented")

	var parsed []models.ErrorLogEntry
	require.NoError(t, json.Unmarshal([]byte(exported), &parsed))
	assert.ElementsMatch(t, logger.GetLogs(models.LogFilter{}), parsed)
}

func TestErrorLogger_PersistsAndRestores(t *testing.T) {
	store := NewMemoryStorage()
	first := newTestLogger(t, store)
	first.LogError(context.Background(), "survives restart", nil, models.CategoryRuntime, models.SeverityHigh)

	raw, ok, err := store.Get(DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "survives restart")

	second := newTestLogger(t, store)
	logs := second.GetLogs(models.LogFilter{})
	require.Len(t, logs, 1)
	assert.Equal(t, "survives restart", logs[0].Message)

	second.ClearAll()
	third := newTestLogger(t, store)
	assert.Equal(t, 0, third.Len())
}

func TestErrorLogger_SeparateKeysAreIsolated(t *testing.T) {
	store := NewMemoryStorage()
	a := newTestLogger(t, store, WithStorageKey("a"))
	a.LogError(context.Background(), "only in a", nil, "", "")

	b := newTestLogger(t, store, WithStorageKey("b"))
	assert.Equal(t, 0, b.Len())
}

func TestErrorLogger_CorruptStorageStartsEmpty(t *testing.T) {
	store := NewMemoryStorage()
	require.NoError(t, store.Set(DefaultStorageKey, "{not json"))

	var console strings.Builder
	logger := NewErrorLogger(store, WithConsole(log.New(&console, "", 0)))

	assert.Equal(t, 0, logger.Len())
	assert.Contains(t, console.String(), "failed to parse stored error logs")
}

func TestErrorLogger_StorageFailuresAreSwallowed(t *testing.T) {
	var console strings.Builder
	store := &failingStorage{getErr: errors.New("read failed"), setErr: errors.New("quota exceeded")}
	logger := NewErrorLogger(store, WithConsole(log.New(&console, "", 0)))

	entry := logger.LogError(context.Background(), "still recorded", nil, "", "")
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 1, logger.Len())
	assert.Contains(t, console.String(), "quota exceeded")

	panicky := newTestLogger(t, &failingStorage{panics: true})
	require.NotPanics(t, func() {
		panicky.LogError(context.Background(), "x", nil, "", "")
	})
	assert.Equal(t, 1, panicky.Len())
}

func TestErrorLogger_ConsoleLevels(t *testing.T) {
	var console strings.Builder
	logger := NewErrorLogger(nil, WithConsole(log.New(&console, "", 0)))

	logger.LogDatabaseError(context.Background(), "crit", "permission denied", nil)
	logger.LogValidationError(context.Background(), "warned", nil, "")
	logger.LogError(context.Background(), "informational", nil, models.CategoryRuntime, models.SeverityLow)
	logger.LogError(context.Background(), "with stack", &PanicError{Value: 1, Stack: "frame-one\n"}, models.CategoryRuntime, models.SeverityCritical)

	out := console.String()
	assert.Contains(t, out, "ERROR [database/critical] crit")
	assert.Contains(t, out, "WARN [validation/medium] warned")
	assert.Contains(t, out, "INFO [runtime/low] informational")
	assert.Contains(t, out, "stack:\nframe-one")
}

func TestErrorLogger_RouteFromContext(t *testing.T) {
	logger := newTestLogger(t, nil)
	ctx := WithRoute(context.Background(), "/api/validate/workflow")

	auto := logger.LogDatabaseError(ctx, "x", nil, nil)
	require.NotNil(t, auto.Context)
	assert.Equal(t, "/api/validate/workflow", auto.Context.Route)

	explicit := logger.LogDatabaseError(ctx, "x", nil, &models.LogContext{Route: "/workflows/42", User: "ops"})
	assert.Equal(t, "/workflows/42", explicit.Context.Route)
	assert.Equal(t, "ops", explicit.Context.User)

	none := logger.LogDatabaseError(context.Background(), "x", nil, nil)
	assert.Nil(t, none.Context)
}

func TestErrorLogger_SubscribeReceivesNewEntries(t *testing.T) {
	logger := newTestLogger(t, nil, WithStreamBuffer(1))
	ch, cancel := logger.Subscribe()

	first := logger.LogError(context.Background(), "first", nil, "", "")
	logger.LogError(context.Background(), "dropped", nil, "", "")

	got := <-ch
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, uint64(1), logger.StreamDroppedTotal())

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	require.NotPanics(t, func() {
		logger.LogError(context.Background(), "after cancel", nil, "", "")
	})
}

func TestErrorLogger_ConcurrentLogging(t *testing.T) {
	logger := newTestLogger(t, NewMemoryStorage(), WithMaxLogs(50))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				logger.LogError(context.Background(), fmt.Sprintf("w%d-%d", w, i), nil, "", "")
				_ = logger.GetStats()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 50, logger.Len())
}
