package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteMetricsLogger counts busy/locked failures seen in GORM traces and
// delegates everything else to the embedded logger.
type sqliteMetricsLogger struct {
	logger.Interface
}

func (l sqliteMetricsLogger) LogMode(level logger.LogLevel) logger.Interface {
	return sqliteMetricsLogger{Interface: l.Interface.LogMode(level)}
}

func (l sqliteMetricsLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		recordSQLiteError(err)
	}
	l.Interface.Trace(ctx, begin, fc, err)
}
