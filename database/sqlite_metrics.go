package database

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var sqliteBusyErrors uint64
var sqliteLockedErrors uint64

var (
	_ = promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "aerograph_sqlite_busy_errors_total",
		Help: "SQLite statements that failed with SQLITE_BUSY",
	}, func() float64 { return float64(SQLiteBusyErrorsTotal()) })

	_ = promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "aerograph_sqlite_locked_errors_total",
		Help: "SQLite statements that failed with SQLITE_LOCKED",
	}, func() float64 { return float64(SQLiteLockedErrorsTotal()) })
)

func classifySQLiteError(err error) (busy bool, locked bool) {
	if err == nil {
		return false, false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, false
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy timeout") {
		busy = true
	}
	if strings.Contains(msg, "sqlite_locked") || strings.Contains(msg, "database table is locked") {
		locked = true
	}

	return busy, locked
}

func recordSQLiteError(err error) {
	busy, locked := classifySQLiteError(err)
	if busy {
		atomic.AddUint64(&sqliteBusyErrors, 1)
	}
	if locked {
		atomic.AddUint64(&sqliteLockedErrors, 1)
	}
}

func SQLiteBusyErrorsTotal() uint64 {
	return atomic.LoadUint64(&sqliteBusyErrors)
}

func SQLiteLockedErrorsTotal() uint64 {
	return atomic.LoadUint64(&sqliteLockedErrors)
}

// Ping checks db with a short default deadline
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return ErrNotInitialized
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) <= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}

	return sqlDB.PingContext(ctx)
}
