package database

import (
	"context"
	"time"

	"gorm.io/gorm/logger"
)

// slowQueryThreshold marks queries worth counting. The settings screen
// join and the preview assembly are the only multi-query paths; anything
// slower than this on an embedded SQLite file is a sign of lock pressure.
const slowQueryThreshold = 200 * time.Millisecond

// sqliteMetricsLogger wraps the gorm logger to keep busy/locked/slow
// counters the health endpoint reports.
type sqliteMetricsLogger struct {
	inner logger.Interface
}

func (l sqliteMetricsLogger) LogMode(level logger.LogLevel) logger.Interface {
	return sqliteMetricsLogger{inner: l.inner.LogMode(level)}
}

func (l sqliteMetricsLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l sqliteMetricsLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l sqliteMetricsLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

func (l sqliteMetricsLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil {
		recordSQLiteError(err)
	}
	if time.Since(begin) >= slowQueryThreshold {
		recordSlowQuery()
	}
	l.inner.Trace(ctx, begin, fc, err)
}
