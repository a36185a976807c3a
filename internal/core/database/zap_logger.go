package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// ZapLogger 把 gorm 的 SQL 日志写进 zap
type ZapLogger struct {
	l     *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

func NewZapLogger(l *zap.Logger, level logger.LogLevel) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{l: l.Named("gorm").WithOptions(zap.AddCallerSkip(3)), level: level, slow: slowQuery}
}

func (z *ZapLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *z
	cp.level = level
	return &cp
}

func (z *ZapLogger) Info(_ context.Context, msg string, args ...any) {
	if z.level >= logger.Info {
		z.l.Info(fmt.Sprintf(msg, args...))
	}
}

func (z *ZapLogger) Warn(_ context.Context, msg string, args ...any) {
	if z.level >= logger.Warn {
		z.l.Warn(fmt.Sprintf(msg, args...))
	}
}

func (z *ZapLogger) Error(_ context.Context, msg string, args ...any) {
	if z.level >= logger.Error {
		z.l.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace 找不到记录不算错误
func (z *ZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && z.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		z.l.Error("sql", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case elapsed > z.slow && z.level >= logger.Warn:
		sql, rows := fc()
		z.l.Warn("slow sql", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case z.level >= logger.Info:
		sql, rows := fc()
		z.l.Debug("sql", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
