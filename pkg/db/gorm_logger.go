package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// gormLogger routes GORM output through the service logger. Failed and slow
// statements are warnings; everything else is debug and only at Info mode.
type gormLogger struct {
	logg  *logger.Logger
	slow  time.Duration
	level gormlogger.LogLevel
}

func newGormLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &gormLogger{logg: logg, slow: slow, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.logg.Info(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.logg.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.logg.Error(ctx, fmt.Sprintf(msg, args...), nil)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	fields := func() map[string]any {
		stmt, rows := fc()
		return map[string]any{"sql": stmt, "rows": rows, "elapsed_ms": elapsed.Milliseconds()}
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		f := fields()
		f["error"] = err.Error()
		l.logg.Warn(l.logg.WithFields(ctx, f), "db.query.failed")
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		f := fields()
		f["threshold_ms"] = l.slow.Milliseconds()
		l.logg.Warn(l.logg.WithFields(ctx, f), "db.query.slow")
	case l.level >= gormlogger.Info:
		l.logg.Debug(l.logg.WithFields(ctx, fields()), "db.query")
	}
}
