package database

import (
	"aerograph/config"
	"aerograph/core"
	"aerograph/models"
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(&config.Config{
		DatabaseURL:          filepath.Join(t.TempDir(), "aerograph-test.db"),
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  1000,
		SQLiteJournalMode:    "WAL",
		SQLiteSynchronous:    "NORMAL",
		SQLiteMaxOpenConns:   1,
		SQLiteMaxIdleConns:   1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSettingStore_SetGetDelete(t *testing.T) {
	store := NewSettingStore(openTestDB(t))

	_, ok, err := store.Get("airline_error_logs")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("airline_error_logs", `[{"id":"a"}]`))
	require.NoError(t, store.Set("airline_error_logs", `[]`))

	value, ok, err := store.Get("  airline_error_logs ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)

	require.NoError(t, store.Delete("airline_error_logs"))
	_, ok, err = store.Get("airline_error_logs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingStore_RejectsBadInput(t *testing.T) {
	store := NewSettingStore(openTestDB(t))
	assert.ErrorIs(t, store.Set(" ", "x"), ErrEmptyKey)

	var unopened *SettingStore
	_, _, err := unopened.Get("k")
	assert.True(t, errors.Is(err, ErrNotInitialized))
	assert.ErrorIs(t, unopened.Set("k", "v"), core.ErrNoStorage)
}

func TestSettingStore_BacksErrorLoggerAcrossRestarts(t *testing.T) {
	db := openTestDB(t)
	quiet := core.WithConsole(log.New(io.Discard, "", 0))

	first := core.NewErrorLogger(NewSettingStore(db), quiet)
	first.LogDatabaseError(context.Background(), "Failed to fetch domains", &models.DatabaseError{Code: "08006", Message: "connection failure"}, &models.LogContext{Table: "domains"})

	second := core.NewErrorLogger(NewSettingStore(db), quiet)
	logs := second.GetLogs(models.LogFilter{})
	require.Len(t, logs, 1)
	assert.Equal(t, models.SeverityHigh, logs[0].Severity)
	assert.Equal(t, "08006", logs[0].Details.Code)
	assert.Equal(t, "domains", logs[0].Context.Table)
}

func TestPing_OpenDB(t *testing.T) {
	require.NoError(t, Ping(context.Background(), openTestDB(t)))
}
