package gormdb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold is how long a query may run before it is logged
// at Warn instead of Debug.
const slowQueryThreshold = 200 * time.Millisecond

// gormLogger adapts a *slog.Logger to gorm.io/gorm/logger.Interface so
// GORM's query tracing lands in the same structured log as everything
// else.
type gormLogger struct {
	log   *slog.Logger
	level gormlogger.LogLevel
}

func newGormLogger(log *slog.Logger) *gormLogger {
	return &gormLogger{log: log, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{log: l.log, level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, msg, slog.Any("data", args))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, msg, slog.Any("data", args))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, msg, slog.Any("data", args))
	}
}

// Trace logs one line per executed statement. Record-not-found is the
// expected miss path here, not a database failure, so it stays quiet.
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []any{
		slog.String("sql", sql),
		slog.Duration("duration", elapsed),
		slog.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		l.log.ErrorContext(ctx, "query failed", append(attrs, slog.String("error", err.Error()))...)
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		l.log.WarnContext(ctx, "slow query", attrs...)
	case l.level >= gormlogger.Info:
		l.log.DebugContext(ctx, "query", attrs...)
	}
}
